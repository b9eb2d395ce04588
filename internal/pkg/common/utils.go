package common

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// IsUUID 檢查字串是否為合法 UUID
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 將名稱轉為 kebab-case 識別碼
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(slug, "-")
}

// WriteError 以統一格式寫入錯誤響應並中止後續 handler
func WriteError(c *gin.Context, err error, debug bool) {
	status, resp := HTTPStatus(err, debug)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}
