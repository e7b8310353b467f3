package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rorychadbourne-alt/gratitude-sub000/middleware"
)

func parsePagination(pageStr, sizeStr string) (int, int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 || size > 100 {
		size = 20
	}
	return page, size
}

func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	switch id := v.(type) {
	case uint:
		return id, true
	case int:
		return uint(id), true
	case float64:
		return uint(id), true
	default:
		return 0, false
	}
}
