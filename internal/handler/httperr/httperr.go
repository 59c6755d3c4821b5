package httperr

import (
	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
}

// AbortWithError writes the error envelope and records the cause on the
// context for the logging middleware. err may be nil on guard paths that
// have no underlying cause.
func AbortWithError(c *gin.Context, status int, err error, msg string) {
	resp := Response{Status: status}
	resp.Error.Message = msg

	if err != nil {
		_ = c.Error(gin.Error{
			Err:  err,
			Type: gin.ErrorTypePublic,
			Meta: resp,
		})
	}
	c.AbortWithStatusJSON(status, resp)
}
