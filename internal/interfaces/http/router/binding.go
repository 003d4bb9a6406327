package router

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/clientportal/backend/internal/domain/project"
)

var bindingOnce sync.Once

// registerValidations installs custom binding validators on gin's validator
// engine. project_stage accepts only names from the stage ladder.
func registerValidations() {
	bindingOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("project_stage", func(fl validator.FieldLevel) bool {
			_, err := project.ProgressForStage(fl.Field().String())
			return err == nil
		})
	})
}
