package holiday

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

type CreateHolidayRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
	Name string `json:"name"`
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors
	_, dateOK := validator.ParseDate(r.Date)
	errs.Check(dateOK, "date", "must be in YYYY-MM-DD format")
	errs.Check(!validator.IsEmpty(r.Name), "name", "is required")
	return errs.Err()
}

type HolidayFilter struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (f *HolidayFilter) Validate() error {
	var errs validator.ValidationErrors
	from, fromOK := validator.ParseDate(f.From)
	to, toOK := validator.ParseDate(f.To)
	errs.Check(fromOK, "from", "must be in YYYY-MM-DD format")
	errs.Check(toOK, "to", "must be in YYYY-MM-DD format")
	if fromOK && toOK {
		errs.Check(!to.Before(from), "to", "must not be before from")
	}
	return errs.Err()
}

type HolidayResponse struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}
