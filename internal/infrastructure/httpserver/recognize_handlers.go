package httpserver

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/captchakit/captcha-recognizer/internal/core/domain/apperr"
	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
	"github.com/captchakit/captcha-recognizer/internal/infrastructure/imaging"
)

type recognizeResponse struct {
	Success          bool   `json:"success"`
	Result           string `json:"result"`
	CaptchaType      string `json:"captcha_type"`
	ResultType       string `json:"result_type"`
	Cached           bool   `json:"cached"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
	RequestID        string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Success   bool           `json:"success"`
	ErrorCode int            `json:"error_code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// recognizeUpload handles multipart file uploads. Processor options arrive
// as individual form fields.
func (s *Server) recognizeUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return s.errorJSON(c, apperr.MissingParameter("file"))
	}
	if fileHeader.Size > s.maxImageBytes {
		return s.errorJSON(c, apperr.ImageTooLarge(fileHeader.Size, s.maxImageBytes))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return s.errorJSON(c, apperr.InvalidImageData("cannot open uploaded file", err))
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxImageBytes+1))
	if err != nil {
		return s.errorJSON(c, apperr.InvalidImageData("cannot read uploaded file", err))
	}

	captchaType := c.FormValue("captcha_type")
	opts := optionsFromForm(c)
	return s.recognize(c, data, captchaType, opts)
}

type urlRequest struct {
	URL         string         `json:"url"`
	CaptchaType string         `json:"captcha_type"`
	Options     map[string]any `json:"options"`
}

// recognizeURL fetches the challenge image from a remote URL.
func (s *Server) recognizeURL(c echo.Context) error {
	var req urlRequest
	if err := c.Bind(&req); err != nil {
		return s.errorJSON(c, apperr.New(apperr.CodeInvalidRequestFormat, "invalid request body"))
	}
	if req.URL == "" {
		return s.errorJSON(c, apperr.MissingParameter("url"))
	}

	data, err := s.fetchImage(c, req.URL)
	if err != nil {
		return s.errorJSON(c, apperr.From(err))
	}
	return s.recognize(c, data, req.CaptchaType, captcha.Options(req.Options))
}

func (s *Server) fetchImage(c echo.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.InvalidParameter("url", url)
	}
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperr.Network("failed to fetch image from URL", err).WithDetail("url", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Network(fmt.Sprintf("image fetch returned status %d", resp.StatusCode), nil).
			WithDetail("url", url).
			WithDetail("status", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.urlFetchLimit+1))
	if err != nil {
		return nil, apperr.Network("failed to read image from URL", err).WithDetail("url", url)
	}
	if int64(len(data)) > s.urlFetchLimit {
		return nil, apperr.ImageTooLarge(int64(len(data)), s.urlFetchLimit)
	}
	return data, nil
}

type base64Request struct {
	ImageBase64 string         `json:"image_base64"`
	CaptchaType string         `json:"captcha_type"`
	Options     map[string]any `json:"options"`
}

// recognizeBase64 decodes an inline base64 payload, tolerating data-URL
// prefixes like "data:image/png;base64,".
func (s *Server) recognizeBase64(c echo.Context) error {
	var req base64Request
	if err := c.Bind(&req); err != nil {
		return s.errorJSON(c, apperr.New(apperr.CodeInvalidRequestFormat, "invalid request body"))
	}
	if req.ImageBase64 == "" {
		return s.errorJSON(c, apperr.MissingParameter("image_base64"))
	}

	payload := req.ImageBase64
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return s.errorJSON(c, apperr.InvalidImageData("invalid base64 image data", err))
	}
	return s.recognize(c, data, req.CaptchaType, captcha.Options(req.Options))
}

// recognize is the shared tail of the three intake endpoints.
func (s *Server) recognize(c echo.Context, data []byte, captchaType string, opts captcha.Options) error {
	if int64(len(data)) > s.maxImageBytes {
		return s.errorJSON(c, apperr.ImageTooLarge(int64(len(data)), s.maxImageBytes))
	}
	if int64(len(data)) < s.minImageBytes {
		return s.errorJSON(c, apperr.ImageTooSmall(int64(len(data)), s.minImageBytes))
	}

	if captchaType == "" {
		captchaType = s.config.DefaultType
	}
	if opts == nil {
		opts = captcha.Options{}
	}

	rec, err := s.recognizer.Recognize(
		c.Request().Context(),
		imaging.FromBytes(data),
		captcha.ChallengeType(captchaType),
		opts,
	)
	if err != nil {
		return s.errorJSON(c, apperr.From(err))
	}

	return c.JSON(http.StatusOK, recognizeResponse{
		Success:          true,
		Result:           rec.Result,
		CaptchaType:      rec.Type.String(),
		ResultType:       string(captcha.ClassifyResult(rec.Result)),
		Cached:           rec.Cached,
		ProcessingTimeMs: rec.Duration.Milliseconds(),
		RequestID:        requestID(c),
	})
}

func (s *Server) listCaptchaTypes(c echo.Context) error {
	types := s.recognizer.SupportedTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"captcha_types": names})
}

func (s *Server) cacheStats(c echo.Context) error {
	stats, err := s.recognizer.CacheStats(c.Request().Context())
	if err != nil {
		return s.errorJSON(c, apperr.From(err))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"total_entries":   stats.Total,
		"expired_entries": stats.Expired,
		"active_entries":  stats.Active,
		"max_size":        stats.MaxSize,
		"ttl_seconds":     int64(stats.TTL.Seconds()),
	})
}

func (s *Server) clearCache(c echo.Context) error {
	if err := s.recognizer.ClearCache(c.Request().Context()); err != nil {
		return s.errorJSON(c, apperr.From(err))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "message": "cache cleared"})
}

// optionsFromForm lifts known processor and preprocessing options out of
// multipart form fields.
func optionsFromForm(c echo.Context) captcha.Options {
	opts := captcha.Options{}

	for _, key := range []string{
		captcha.OptRemoveSpaces, captcha.OptToLower, captcha.OptToUpper,
		captcha.OptAsInt, captcha.OptPreprocess,
		imaging.OptGrayscale, imaging.OptSharpen, imaging.OptDenoise,
	} {
		if v := c.FormValue(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				opts[key] = b
			}
		}
	}
	for _, key := range []string{imaging.OptContrast, imaging.OptThreshold, imaging.OptScale} {
		if v := c.FormValue(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				opts[key] = f
			}
		}
	}
	if v := c.FormValue(captcha.OptReturnType); v != "" {
		opts[captcha.OptReturnType] = v
	}
	return opts
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// errorJSON renders a taxonomy error with its mapped HTTP status.
func (s *Server) errorJSON(c echo.Context, err *apperr.Error) error {
	return c.JSON(httpStatus(err.Code), errorResponse{
		Success:   false,
		ErrorCode: err.Code,
		Message:   err.Message,
		Details:   err.Details,
		RequestID: requestID(c),
	})
}

// httpStatus maps taxonomy codes onto HTTP statuses.
func httpStatus(code int) int {
	switch code {
	case apperr.CodeInvalidParameter, apperr.CodeMissingParameter,
		apperr.CodeInvalidRequestFormat, apperr.CodeUnsupportedCaptchaType,
		apperr.CodeInvalidImageFormat, apperr.CodeInvalidImageData,
		apperr.CodeImageTooSmall:
		return http.StatusBadRequest
	case apperr.CodeImageTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperr.CodeRecognitionFailed:
		return http.StatusUnprocessableEntity
	case apperr.CodeProcessingTimeout:
		return http.StatusGatewayTimeout
	case apperr.CodeNetworkError:
		return http.StatusBadGateway
	case apperr.CodeUnauthorized, apperr.CodeInvalidAPIKey, apperr.CodeTokenExpired:
		return http.StatusUnauthorized
	case apperr.CodePermissionDenied:
		return http.StatusForbidden
	case apperr.CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
