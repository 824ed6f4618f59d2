package api

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/savelyev-an/packmart/internal/transport/api/middlewares"
)

// getUserIDFromContext берет из контекста gin ID текущего юзера. ID
// устанавливается в middlewares.AuthRequired. В случае, если значения
// в контексте нет или ошибка утверждения типа - вернется 0.
func getUserIDFromContext(c *gin.Context) int64 {
	userIDStr, exist := c.Get(middlewares.CurrentUserIDKey)
	if !exist {
		return 0
	}
	userID, ok := userIDStr.(int64)
	if !ok {
		return 0
	}
	return userID
}

// getOrderIDParam парсит path-параметр :id.
func getOrderIDParam(c *gin.Context) (int64, error) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		return 0, errors.New("invalid order id")
	}
	return orderID, nil
}
