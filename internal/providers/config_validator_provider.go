package providers

import (
	"fmt"
	"minelens/internal/models"
	"minelens/internal/structures"
	"net/url"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks struct tags first, then the values tags cannot express.
func (v *CnfValidator) Validate() error {
	vd := validate.Struct(v.conf)
	if !vd.Validate() {
		return vd.Errors
	}

	for _, endpoint := range v.conf.Ledger.Endpoints {
		u, err := url.Parse(endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("ledger.endpoints: invalid url %q", endpoint)
		}
	}
	if _, err := models.PublicKeyFromBase58(v.conf.Ledger.ProgramID); err != nil {
		return fmt.Errorf("ledger.programId: %w", err)
	}
	if v.conf.Recompute.Enabled && v.conf.Recompute.Interval <= 0 {
		return fmt.Errorf("recompute.interval must be positive when recompute is enabled")
	}
	return nil
}
