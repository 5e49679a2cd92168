// Package validation provides struct tag validation for livefeed
// configuration using the validator library.
//
//	type Config struct {
//	    BaseURL string `mapstructure:"base_url" validate:"required,url"`
//	}
//	err := validation.Validate(cfg)
package validation
