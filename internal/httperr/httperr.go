// Package httperr alan hatalarını fiber hatalarına çevirir.
package httperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"rasyon-backend/internal/backup"
	"rasyon-backend/internal/costing"
	"rasyon-backend/internal/ledger"
	"rasyon-backend/internal/planning"
	"rasyon-backend/internal/repository"
	"rasyon-backend/internal/store"
)

const (
	internalMessage = "Beklenmeyen sunucu hatası"
	notSavedMessage = "Değişiklik uygulandı ancak kaydedilemedi, bir sonraki kayıtta tekrar denenecek"
)

// From: bilinen hatalar mesajıyla birlikte uygun durum koduna çevrilir;
// bilinmeyenler olduğu gibi döner ve ErrorHandler'da 500 olur
func From(err error) error {
	if err == nil {
		return nil
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}

	switch {
	case errors.Is(err, store.ErrNotSaved):
		return fiber.NewError(fiber.StatusServiceUnavailable, notSavedMessage)

	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, ledger.ErrNotFound),
		errors.Is(err, repository.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())

	case errors.Is(err, costing.ErrCycle),
		errors.Is(err, ledger.ErrMonthClosed),
		errors.Is(err, repository.ErrDuplicate):
		return fiber.NewError(fiber.StatusConflict, err.Error())

	case errors.Is(err, store.ErrValidation),
		errors.Is(err, ledger.ErrValidation),
		errors.Is(err, ledger.ErrInvalidMonth),
		errors.Is(err, backup.ErrInvalidImport),
		errors.Is(err, planning.ErrUnknownFormula):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}

func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(From(err), &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"error": fe.Message,
			})
		}
		log.Error("Unexpected error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": internalMessage,
		})
	}
}
