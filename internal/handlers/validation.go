package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
	appvalidator "github.com/saaskit-io/saaskit/pkg/validator"
)

// bindAndValidate decodes the JSON body into T and runs struct validation,
// turning failures into client-facing bad request errors.
func bindAndValidate[T any](c *gin.Context) (*T, error) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperrors.NewBadRequest("invalid request body")
	}
	if err := appvalidator.ValidateStruct(req); err != nil {
		return nil, formatValidationError(err)
	}
	return &req, nil
}

func formatValidationError(err error) error {
	var failures appvalidator.ValidationErrors
	if errors.As(err, &failures) && len(failures) > 0 {
		first := failures[0]
		switch first.Tag {
		case "required":
			return apperrors.NewBadRequest(fmt.Sprintf("%s is required", first.Field))
		case "email":
			return apperrors.NewBadRequest(fmt.Sprintf("%s must be a valid email address", first.Field))
		case "min":
			return apperrors.NewBadRequest(fmt.Sprintf("%s must be at least %s characters", first.Field, first.Param))
		case "max":
			return apperrors.NewBadRequest(fmt.Sprintf("%s must be at most %s characters", first.Field, first.Param))
		case "oneof":
			return apperrors.NewBadRequest(fmt.Sprintf("%s must be one of: %s", first.Field, first.Param))
		default:
			return apperrors.NewBadRequest(fmt.Sprintf("%s is invalid", first.Field))
		}
	}
	return apperrors.NewBadRequest(err.Error())
}
