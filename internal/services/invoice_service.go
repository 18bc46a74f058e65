package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/agamariel/invoicehub/internal/models"
	"github.com/agamariel/invoicehub/internal/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidInvoiceRequest = errors.New("invalid invoice request")
	ErrInvoiceCreation       = errors.New("failed to create invoice request")
	ErrProviderNotFound      = errors.New("provider not found")
)

// InvoiceService определяет интерфейс работы с заявками на счета.
type InvoiceService interface {
	RequestInvoice(ctx context.Context, input *models.RequestInvoiceInput, requestingUserID *uuid.UUID) (*models.RequestInvoiceResult, error)
	ListInvoices(ctx context.Context, userID uuid.UUID) ([]*models.InvoiceResponse, error)
}

// InvoiceServiceImpl реализует InvoiceService.
type InvoiceServiceImpl struct {
	orderStorage   storage.OrderStorage
	invoiceStorage storage.InvoiceStorage
	userStorage    storage.UserStorage
	matcher        OrderMatcher
	notifier       NotificationService
	validate       *validator.Validate
	logger         *zap.Logger
}

// NewInvoiceService создаёт новый сервис заявок. notifier может быть nil.
func NewInvoiceService(
	orderStorage storage.OrderStorage,
	invoiceStorage storage.InvoiceStorage,
	userStorage storage.UserStorage,
	matcher OrderMatcher,
	notifier NotificationService,
	logger *zap.Logger,
) *InvoiceServiceImpl {
	return &InvoiceServiceImpl{
		orderStorage:   orderStorage,
		invoiceStorage: invoiceStorage,
		userStorage:    userStorage,
		matcher:        matcher,
		notifier:       notifier,
		validate:       newValidator(),
		logger:         logger,
	}
}

// RequestInvoice создаёт заявку на счёт по существующему заказу.
// requestingUserID == nil для гостевых заявок.
func (s *InvoiceServiceImpl) RequestInvoice(ctx context.Context, input *models.RequestInvoiceInput, requestingUserID *uuid.UUID) (*models.RequestInvoiceResult, error) {
	trimInput(input)
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInvoiceRequest, describeValidation(err))
	}

	providerID := uuid.MustParse(input.ProviderID)
	if err := s.checkProvider(ctx, providerID); err != nil {
		return nil, err
	}

	order, err := s.orderStorage.GetByNumber(ctx, input.OrderNo)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, storage.ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInvoiceCreation, err)
	}

	verdict := s.matcher.Match(order, input)

	invoice := &models.Invoice{
		OrderNo:    input.OrderNo,
		CusName:    input.CustomerName,
		TaxNo:      input.TaxNo,
		TaxAddress: input.TaxAddress,
		Email:      input.Email,
		Phone:      input.Phone,
		UserID:     providerID,
		CreatedBy:  requestingUserID,
	}

	if err := s.invoiceStorage.CreateRequest(ctx, invoice); err != nil {
		switch {
		case errors.Is(err, storage.ErrOrderNotFound):
			return nil, storage.ErrOrderNotFound
		case errors.Is(err, storage.ErrInvoiceAlreadyExists):
			return nil, storage.ErrInvoiceAlreadyExists
		}
		s.logger.Error("failed to create invoice request",
			zap.String("order_no", input.OrderNo),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrInvoiceCreation, err)
	}

	s.logger.Info("invoice requested",
		zap.String("req_no", invoice.ReqNo),
		zap.String("order_no", invoice.OrderNo),
		zap.String("verdict", string(verdict.Status)),
		zap.Bool("guest", requestingUserID == nil),
	)

	s.notifyRequestReceived(ctx, invoice)

	return &models.RequestInvoiceResult{
		Invoice:    invoice,
		Validation: verdict,
	}, nil
}

// ListInvoices возвращает заявки пользователя.
func (s *InvoiceServiceImpl) ListInvoices(ctx context.Context, userID uuid.UUID) ([]*models.InvoiceResponse, error) {
	invoices, err := s.invoiceStorage.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get invoices: %w", err)
	}

	result := make([]*models.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, inv.ToResponse())
	}
	return result, nil
}

// checkProvider проверяет, что заявка адресована существующему поставщику.
func (s *InvoiceServiceImpl) checkProvider(ctx context.Context, providerID uuid.UUID) error {
	user, err := s.userStorage.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrProviderNotFound
		}
		return fmt.Errorf("%w: %v", ErrInvoiceCreation, err)
	}
	if user.Role != models.RoleProvider {
		return ErrProviderNotFound
	}
	return nil
}

// notifyRequestReceived отправляет подтверждение клиенту. Ошибка отправки
// на результат заявки не влияет.
func (s *InvoiceServiceImpl) notifyRequestReceived(ctx context.Context, invoice *models.Invoice) {
	if s.notifier == nil {
		return
	}

	if err := s.notifier.SendRequestReceived(ctx, invoice); err != nil {
		if errors.Is(err, ErrMailNotConfigured) {
			s.logger.Debug("request confirmation skipped: mail is not configured")
			return
		}
		s.logger.Warn("failed to send request confirmation",
			zap.String("req_no", invoice.ReqNo),
			zap.Error(err),
		)
	}
}

func trimInput(input *models.RequestInvoiceInput) {
	input.OrderNo = strings.TrimSpace(input.OrderNo)
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.TaxNo = strings.TrimSpace(input.TaxNo)
	input.TaxAddress = strings.TrimSpace(input.TaxAddress)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.ProviderID = strings.TrimSpace(input.ProviderID)
}

// newValidator возвращает валидатор, который называет поля по json-тегам.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "email":
			parts = append(parts, fe.Field()+" must be a valid email")
		case "uuid":
			parts = append(parts, fe.Field()+" must be a valid UUID")
		case "min":
			parts = append(parts, fe.Field()+" must be at least "+fe.Param()+" characters")
		case "max":
			parts = append(parts, fe.Field()+" must be at most "+fe.Param()+" characters")
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
