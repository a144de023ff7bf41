package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/astaxie/beego/validation"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// validationError Joins all field errors into one message for the client.
func validationError(errs []*validation.Error) error {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		log.Warnf("[Validation] %s: %s", err.Key, err.Message)
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return errors.New(strings.Join(messages, "; "))
}

// BindAndValid Binds the request into form and checks its `valid` tags.
// The returned status is http.StatusOK when the form can be used.
func BindAndValid(c *gin.Context, form interface{}) (int, error) {
	if err := c.ShouldBind(form); err != nil {
		return http.StatusBadRequest, err
	}

	valid := validation.Validation{}
	check, err := valid.Valid(form)
	if err != nil {
		return http.StatusInternalServerError, err
	}
	if !check {
		return http.StatusBadRequest, validationError(valid.Errors)
	}

	return http.StatusOK, nil
}
