package providers

import (
	"errors"
	"tsd/internal/structures"

	"github.com/gookit/validate"
)

// CnfValidator validates the decoded config against its struct tags.
type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if v.Validate() {
		return nil
	}
	return errors.New(v.Errors.One())
}
