package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/GTDGit/wilayah_api/internal/models"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

// ProvinceInput is the full field set of a province write.
type ProvinceInput struct {
	Code string `json:"code" validate:"required,number,len=2"`
	Name string `json:"name" validate:"required,max=100"`
}

// RegencyInput is the full field set of a regency write.
type RegencyInput struct {
	Code string `json:"code" validate:"required,number,len=4"`
	Name string `json:"name" validate:"required,max=100"`
	Type string `json:"type" validate:"required,oneof=kabupaten kota"`
}

func (in ProvinceInput) normalized() ProvinceInput {
	return ProvinceInput{Code: strings.TrimSpace(in.Code), Name: strings.TrimSpace(in.Name)}
}

func (in RegencyInput) normalized() RegencyInput {
	return RegencyInput{
		Code: strings.TrimSpace(in.Code),
		Name: strings.TrimSpace(in.Name),
		Type: strings.ToLower(strings.TrimSpace(in.Type)),
	}
}

// Validator runs before every write. Field problems are collected into one
// ValidationError; permission denials and missing parents are reported on
// their own.
type Validator struct {
	validate  *validator.Validate
	provinces ProvinceRepo
	regencies RegencyRepo
	can       Authorizer
}

// NewValidator creates a Validator.
func NewValidator(provinces ProvinceRepo, regencies RegencyRepo, can Authorizer) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{validate: v, provinces: provinces, regencies: regencies, can: can}
}

// Authorize reports a PermissionError unless actor may perform action.
func (v *Validator) Authorize(actor models.Actor, action Action, ownerID int) error {
	return authorize(v.can, actor, action, ownerID)
}

// ProvinceCreate validates a new province.
func (v *Validator) ProvinceCreate(ctx context.Context, actor models.Actor, in ProvinceInput) error {
	if err := v.Authorize(actor, ActionCreate, 0); err != nil {
		return err
	}
	return v.provinceFields(ctx, in, 0)
}

// ProvinceUpdate validates changes to existing. in holds existing values
// overlaid with the submitted ones.
func (v *Validator) ProvinceUpdate(ctx context.Context, actor models.Actor, existing *models.Province, in ProvinceInput) error {
	if err := v.Authorize(actor, ActionEdit, existing.CreatedBy); err != nil {
		return err
	}
	return v.provinceFields(ctx, in, existing.ID)
}

// ProvinceDelete refuses to delete a province that still owns regencies.
func (v *Validator) ProvinceDelete(ctx context.Context, actor models.Actor, existing *models.Province) error {
	if err := v.Authorize(actor, ActionDelete, existing.CreatedBy); err != nil {
		return err
	}
	count, err := v.provinces.CountRegencies(ctx, existing.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return provinceInUse(existing, count)
	}
	return nil
}

func provinceInUse(p *models.Province, count int) error {
	return &utils.DependencyError{
		Message: fmt.Sprintf("province %q still has %d regencies; delete them first", p.Name, count),
		Count:   count,
	}
}

// RegencyCreate validates a new regency under provinceID.
func (v *Validator) RegencyCreate(ctx context.Context, actor models.Actor, provinceID int, in RegencyInput) error {
	if err := v.Authorize(actor, ActionCreate, 0); err != nil {
		return err
	}
	if err := v.provinceExists(ctx, provinceID); err != nil {
		return err
	}
	return v.regencyFields(ctx, provinceID, in, 0)
}

// RegencyUpdate validates changes to existing. The province stays fixed.
func (v *Validator) RegencyUpdate(ctx context.Context, actor models.Actor, existing *models.Regency, in RegencyInput) error {
	if err := v.Authorize(actor, ActionEdit, existing.CreatedBy); err != nil {
		return err
	}
	return v.regencyFields(ctx, existing.ProvinceID, in, existing.ID)
}

// RegencyDelete only checks permission; regencies have no children.
func (v *Validator) RegencyDelete(_ context.Context, actor models.Actor, existing *models.Regency) error {
	return v.Authorize(actor, ActionDelete, existing.CreatedBy)
}

func (v *Validator) provinceFields(ctx context.Context, in ProvinceInput, excludeID int) error {
	verr := v.fieldErrors(in, 2)

	if !verr.Has("name") {
		taken, err := v.provinces.ExistsByName(ctx, in.Name, excludeID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("name", "a province with this name already exists")
		}
	}
	if !verr.Has("code") {
		taken, err := v.provinces.ExistsByCode(ctx, in.Code, excludeID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("code", "a province with this code already exists")
		}
	}
	return verr.OrNil()
}

func (v *Validator) regencyFields(ctx context.Context, provinceID int, in RegencyInput, excludeID int) error {
	verr := v.fieldErrors(in, 4)

	if !verr.Has("code") {
		taken, err := v.regencies.ExistsByCode(ctx, in.Code, excludeID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("code", "a regency with this code already exists")
		}
	}
	if !verr.Has("name") {
		taken, err := v.regencies.ExistsByNameInProvince(ctx, in.Name, provinceID, excludeID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("name", "a regency with this name already exists in this province")
		}
	}
	return verr.OrNil()
}

func (v *Validator) provinceExists(ctx context.Context, provinceID int) error {
	if _, err := v.provinces.GetByID(ctx, provinceID); err != nil {
		return notFound("province", provinceID, err)
	}
	return nil
}

// fieldErrors runs the struct tag rules and translates each failure into a
// readable message keyed by the json field name.
func (v *Validator) fieldErrors(in any, codeDigits int) *utils.ValidationError {
	verr := utils.NewValidationError()
	err := v.validate.Struct(in)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("_", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe, codeDigits))
	}
	return verr
}

func fieldMessage(fe validator.FieldError, codeDigits int) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "len", "number":
		if fe.Field() == "code" {
			return fmt.Sprintf("code must be exactly %d digits", codeDigits)
		}
		return fe.Field() + " has an invalid format"
	case "oneof":
		return fe.Field() + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fe.Field() + " is invalid"
	}
}
