package http

import (
	"encoding/json"
	"net/http"
	"time"

	"toolirent/internal/domain"
	"toolirent/internal/service"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var validate = validator.New()

// decodeAndValidate unmarshals the request body into dst and runs
// field-level shape validation on it.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Validationf("malformed request body: %v", err)
	}
	if err := validate.Struct(dst); err != nil {
		return domain.Validationf("%v", err)
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, domain.Validationf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

type loginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerDTO struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password" validate:"required,min=8"`
}

type toolDTO struct {
	Name          string `json:"name" validate:"required,max=100"`
	PriceCents    int32  `json:"price_cents" validate:"gte=0"`
	Description   string `json:"description" validate:"max=1000"`
	Category      string `json:"category"`
	CatalogNumber string `json:"catalog_number" validate:"max=20"`
	Stock         int32  `json:"stock" validate:"gte=0"`
	Status        string `json:"status"`
}

type stockAdjustDTO struct {
	Delta int32 `json:"delta" validate:"required"`
}

type customerDTO struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number"`
	IsActive    *bool  `json:"is_active"`
}

type rentalLineDTO struct {
	ToolID   int32 `json:"tool_id" validate:"required,gt=0"`
	Quantity int32 `json:"quantity" validate:"required,gt=0"`
}

type rentalCreateDTO struct {
	CustomerID int32           `json:"customer_id"`
	StartDate  string          `json:"start_date" validate:"required"`
	EndDate    string          `json:"end_date" validate:"required"`
	Lines      []rentalLineDTO `json:"lines" validate:"required,min=1,dive"`
}

type rentalUpdateDTO struct {
	StartDate string          `json:"start_date" validate:"required"`
	EndDate   string          `json:"end_date" validate:"required"`
	Lines     []rentalLineDTO `json:"lines" validate:"required,min=1,dive"`
}

func (d *rentalCreateDTO) toInput() (service.CreateRentalInput, error) {
	start, err := parseDate(d.StartDate)
	if err != nil {
		return service.CreateRentalInput{}, err
	}
	end, err := parseDate(d.EndDate)
	if err != nil {
		return service.CreateRentalInput{}, err
	}
	return service.CreateRentalInput{
		CustomerID: d.CustomerID,
		StartDate:  start,
		EndDate:    end,
		Lines:      toLineInputs(d.Lines),
	}, nil
}

func (d *rentalUpdateDTO) toInput(rentalID int32) (service.UpdateRentalInput, error) {
	start, err := parseDate(d.StartDate)
	if err != nil {
		return service.UpdateRentalInput{}, err
	}
	end, err := parseDate(d.EndDate)
	if err != nil {
		return service.UpdateRentalInput{}, err
	}
	return service.UpdateRentalInput{
		RentalID:  rentalID,
		StartDate: start,
		EndDate:   end,
		Lines:     toLineInputs(d.Lines),
	}, nil
}

func toLineInputs(lines []rentalLineDTO) []service.RentalLineInput {
	out := make([]service.RentalLineInput, len(lines))
	for i, l := range lines {
		out[i] = service.RentalLineInput{ToolID: l.ToolID, Quantity: l.Quantity}
	}
	return out
}

// toolResponse augments the entity with the derived availability flag,
// which is computed, never stored.
type toolResponse struct {
	*domain.Tool
	IsAvailable bool `json:"is_available"`
}

func newToolResponse(t *domain.Tool) toolResponse {
	return toolResponse{Tool: t, IsAvailable: t.IsAvailable()}
}

func newToolResponses(tools []domain.Tool) []toolResponse {
	out := make([]toolResponse, len(tools))
	for i := range tools {
		out[i] = newToolResponse(&tools[i])
	}
	return out
}
