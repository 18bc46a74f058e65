package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/agamariel/invoicehub/internal/importer"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var errNoFile = errors.New("no file uploaded")

// ErrorHandler отдаёт ошибки в виде {"error": "..."}.
// Если Message у echo.HTTPError - map, он уходит клиенту как есть.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		var body interface{} = map[string]interface{}{"error": "internal server error"}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch msg := he.Message.(type) {
			case map[string]interface{}:
				body = msg
			case string:
				body = map[string]interface{}{"error": msg}
			default:
				body = map[string]interface{}{"error": http.StatusText(code)}
			}
		} else {
			logger.Error("unhandled error",
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			logger.Warn("failed to write error response", zap.Error(err))
		}
	}
}

var fileErrors = []error{
	importer.ErrFileTooLarge,
	importer.ErrInvalidFileType,
	importer.ErrTooManyRows,
	importer.ErrParseFailed,
}

// isFileError сообщает, отклонён ли файл целиком на этапе разбора.
func isFileError(err error) bool {
	return fileErrorMessage(err) != ""
}

// fileErrorMessage возвращает текст сигнальной ошибки без подробностей декодера.
func fileErrorMessage(err error) string {
	for _, target := range fileErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return ""
}

// fileError - 400 с машинным кодом ошибки разбора файла.
func fileError(err error) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, map[string]interface{}{
		"error": fileErrorMessage(err),
		"code":  importer.ErrorCode(err),
	})
}

// readFormFile читает поле "file" multipart-формы целиком.
func readFormFile(c echo.Context) ([]byte, *multipart.FileHeader, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, nil, errNoFile
	}

	src, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, nil, err
	}
	return data, header, nil
}

// spreadsheetMIME определяет тип таблицы. Браузеры нередко присылают
// пустой или общий Content-Type, тогда тип берётся по расширению.
func spreadsheetMIME(header *multipart.FileHeader) string {
	declared := strings.TrimSpace(header.Header.Get(echo.HeaderContentType))
	switch strings.ToLower(declared) {
	case "", echo.MIMEOctetStream, "application/vnd.ms-excel":
	default:
		return declared
	}

	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".xlsx":
		return importer.MIMETypeXLSX
	case ".csv":
		return importer.MIMETypeCSV
	default:
		return declared
	}
}
