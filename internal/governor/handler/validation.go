package handler

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// agentNamePattern constrains the logical agent name. The name is
// embedded in the resource group, storage and deployment names, so it
// must stay within cloud naming rules: lowercase alphanumerics and
// hyphens, starting and ending with an alphanumeric.
var agentNamePattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,60}[a-z0-9])?$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("agentname", func(fl validator.FieldLevel) bool {
			return agentNamePattern.MatchString(fl.Field().String())
		})
	}
}
