package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sm8ta/mongo_user_service/internal/core/domain"
	"github.com/sm8ta/mongo_user_service/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
	logger      ports.LoggerPort
	metrics     ports.MetricsPort
}

func NewUserHandler(
	userService ports.UserService,
	logger ports.LoggerPort,
	metrics ports.MetricsPort,
) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
		metrics:     metrics,
	}
}

// @Summary Список пользователей
// @Description Возвращает всех пользователей
// @Tags users
// @Produce json
// @Success 200 {array} domain.User "Пользователи"
// @Failure 500 {object} errorResponse "Ошибка сервера"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "ListUsers", nil)
		return
	}

	c.JSON(http.StatusOK, users)
}

// @Summary Получить пользователя
// @Description Получение пользователя по ID
// @Tags users
// @Produce json
// @Param id path string true "ID юзера" example:"665f1c2e8b3a4d0012a3b4c5"
// @Success 200 {object} domain.User "Пользователь найден"
// @Failure 400 {object} errorResponse "Неверный ID"
// @Failure 404 {object} errorResponse "Пользователь не найден"
// @Failure 500 {object} errorResponse "Ошибка сервера"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	userID := c.Param("id")

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "GetUser", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Создание пользователя
// @Description Создание нового пользователя, role по умолчанию user
// @Tags users
// @Accept json
// @Produce json
// @Param request body domain.UserInput true "Данные пользователя"
// @Success 201 {object} domain.User "Пользователь создан"
// @Failure 400 {object} validationErrorResponse "Ошибки валидации"
// @Failure 400 {object} errorResponse "Email уже существует"
// @Failure 500 {object} errorResponse "Ошибка сервера"
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	var req domain.UserInput
	if ok, err := bindUserInput(c, &req); !ok {
		h.logger.Info("Failed JSON parse in create user", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	createdUser, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "CreateUser", nil)
		return
	}

	c.JSON(http.StatusCreated, createdUser)
}

// @Summary Обновить пользователя
// @Description Обновление переданных полей пользователя
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "ID юзера" example:"665f1c2e8b3a4d0012a3b4c5"
// @Param request body domain.UserInput true "Данные для обновления"
// @Success 200 {object} domain.User "Пользователь обновлен"
// @Failure 400 {object} validationErrorResponse "Ошибки валидации"
// @Failure 400 {object} errorResponse "Неверный ID"
// @Failure 404 {object} errorResponse "Пользователь не найден"
// @Failure 500 {object} errorResponse "Ошибка сервера"
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	userID := c.Param("id")

	var req domain.UserInput
	if ok, err := bindUserInput(c, &req); !ok {
		h.logger.Info("Failed JSON parse in update user", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return
	}

	updatedUser, err := h.userService.UpdateUser(c.Request.Context(), userID, req)
	if err != nil {
		h.respondError(c, err, "UpdateUser", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	c.JSON(http.StatusOK, updatedUser)
}

// @Summary Удалить пользователя
// @Description Удаление пользователя по ID
// @Tags users
// @Produce json
// @Param id path string true "ID юзера" example:"665f1c2e8b3a4d0012a3b4c5"
// @Success 200 {object} messageResponse "Пользователь удален"
// @Failure 400 {object} errorResponse "Неверный ID"
// @Failure 404 {object} errorResponse "Пользователь не найден"
// @Failure 500 {object} errorResponse "Ошибка сервера"
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	userID := c.Param("id")

	if err := h.userService.DeleteUser(c.Request.Context(), userID); err != nil {
		h.respondError(c, err, "DeleteUser", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: msgUserDeleted})
}

// @Summary Список администраторов
// @Description Пользователи с ролью admin
// @Tags users
// @Produce json
// @Success 200 {array} domain.User "Администраторы"
// @Failure 500 {object} errorResponse "Ошибка сервера"
// @Router /users/admin [get]
func (h *UserHandler) ListAdmins(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	admins, err := h.userService.ListAdmins(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "ListAdmins", nil)
		return
	}

	c.JSON(http.StatusOK, admins)
}

// @Summary Средний возраст
// @Description Среднее значение age по всем пользователям, 0 если пользователей нет
// @Tags users
// @Produce json
// @Success 200 {object} averageAgeResponse "Средний возраст"
// @Failure 500 {object} errorResponse "Ошибка сервера"
// @Router /users/average-age [get]
func (h *UserHandler) AverageAge(c *gin.Context) {
	start := time.Now()
	defer func() {
		h.metrics.RecordMetrics(c, start)
	}()

	avg, err := h.userService.AverageAge(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "AverageAge", nil)
		return
	}

	c.JSON(http.StatusOK, averageAgeResponse{AverageAge: avg})
}

// respondError maps an error kind to its status code and body. Internal causes stay in the log.
func (h *UserHandler) respondError(c *gin.Context, err error, method string, fields map[string]interface{}) {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		newValidationErrorResponse(c, domain.ValidationMessages(err))
	case domain.KindDuplicateEmail:
		newErrorResponse(c, http.StatusBadRequest, msgEmailExists)
	case domain.KindNotFound:
		newErrorResponse(c, http.StatusNotFound, msgUserNotFound)
	case domain.KindInvalidID:
		newErrorResponse(c, http.StatusBadRequest, msgInvalidUserID)
	default:
		if fields == nil {
			fields = map[string]interface{}{}
		}
		fields["error"] = err.Error()
		fields["method"] = method
		fields["request_id"] = requestIDFrom(c)
		h.logger.ErrorContext(c.Request.Context(), "Request failed with server error", fields)
		newErrorResponse(c, http.StatusInternalServerError, msgServerError)
	}
}
