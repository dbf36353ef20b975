package response

import "github.com/gin-gonic/gin"

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// Created reports a successful write with a human-readable message and any
// extra top-level fields (e.g. the new id).
func Created(c *gin.Context, statusCode int, message string, fields gin.H) {
	body := gin.H{
		"success": true,
		"message": message,
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

// Error writes the failure envelope. message is duplicated at the top level
// so simple clients can show it without digging into "error".
func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"message": message,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"message": message,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
