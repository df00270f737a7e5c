package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                    = 0
	CodeBadRequest            = 40000
	CodeUnsupportedFile       = 40001
	CodeUnprocessableDocument = 40002
	CodeFileTooLarge          = 40003
	CodeDocumentNotFound      = 40401
	CodeRateLimited           = 42900
	CodeInternalServer        = 50000
	CodeGenerationFailed      = 50001
	CodeBackendUnavailable    = 50300
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.AbortWithStatusJSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
