// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var periodKeyRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// validCurrencies contains the ISO 4217 codes accepted for accounts and rules.
var validCurrencies = map[string]bool{
	"AUD": true, "BGN": true, "BRL": true, "CAD": true, "CHF": true,
	"CNY": true, "CZK": true, "DKK": true, "EUR": true, "GBP": true,
	"HKD": true, "HUF": true, "IDR": true, "ILS": true, "INR": true,
	"ISK": true, "JPY": true, "KRW": true, "MXN": true, "MYR": true,
	"NOK": true, "NZD": true, "PHP": true, "PLN": true, "RON": true,
	"SEK": true, "SGD": true, "THB": true, "TRY": true, "USD": true,
	"ZAR": true,
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("iso4217", validateISO4217)
		_ = v.RegisterValidation("rule_type", validateRuleType)
		_ = v.RegisterValidation("instance_status", validateInstanceStatus)
		_ = v.RegisterValidation("account_nature", validateAccountNature)
		_ = v.RegisterValidation("frequency", validateFrequency)
		_ = v.RegisterValidation("period_key", validatePeriodKey)
	}
}

func validateISO4217(fl validator.FieldLevel) bool {
	return validCurrencies[fl.Field().String()]
}

func validateRuleType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "recurring", "one_off", "installment", "budget":
		return true
	}
	return false
}

func validateInstanceStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "projected", "realized", "skipped":
		return true
	}
	return false
}

func validateAccountNature(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "asset", "liability":
		return true
	}
	return false
}

func validateFrequency(fl validator.FieldLevel) bool {
	// v1 supports monthly recurrence only.
	return fl.Field().String() == "monthly"
}

func validatePeriodKey(fl validator.FieldLevel) bool {
	return periodKeyRegex.MatchString(fl.Field().String())
}
