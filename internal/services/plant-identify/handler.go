package plantidentify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	apperrors "botaniq/internal/common/errors"
	apphttp "botaniq/internal/common/http"
	"botaniq/internal/common/logger"
	"botaniq/internal/common/metrics"
	"botaniq/internal/common/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	ServiceName = "plant-identify"
	upstream    = "plantnet"
)

var (
	ErrNoImage          = errors.New("NO_IMAGE")
	ErrOrganMismatch    = errors.New("ORGAN_MISMATCH")
	ErrInvalidOrgan     = errors.New("INVALID_ORGAN")
	ErrTooManyImages    = errors.New("TOO_MANY_IMAGES")
	ErrSpeciesNotFound  = errors.New("SPECIES_NOT_FOUND")
	ErrIdentifyFailed   = errors.New("IDENTIFICATION_FAILED")
	ErrIdentifyTimeout  = errors.New("IDENTIFICATION_TIMEOUT")
	ErrMalformedRequest = errors.New("MALFORMED_UPLOAD")
)

type Handler struct {
	config *Config
	client apphttp.Doer
	obs    *observability.Observability
	logger logger.Logger
}

func NewHandler(config *Config, client apphttp.Doer, obs *observability.Observability, log logger.Logger) *Handler {
	if client == nil {
		client = apphttp.NewClient(config.Timeout)
	}
	return &Handler{
		config: config,
		client: client,
		obs:    obs,
		logger: logger.ForService(log, ServiceName),
	}
}

// Identify handles POST /identify-plant.
func (h *Handler) Identify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		metrics.RequestsTotal.WithLabelValues(ServiceName, status).Inc()
		metrics.RequestDuration.WithLabelValues(ServiceName).Observe(time.Since(start).Seconds())
	}()

	input, err := h.parseForm(w, r)
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	if err != nil {
		status = "bad_request"
		apperrors.WriteJSONError(w, h.logger, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.RequestTimeout)
	defer cancel()

	output, err := h.Execute(ctx, input)
	if err != nil {
		status = "error"
		apperrors.WriteJSONError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(output)
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (*Input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.config.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, apperrors.NewIdentificationInputInvalidError("Invalid multipart upload", fmt.Errorf("%w: %v", ErrMalformedRequest, err))
	}

	input := &Input{}
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			img, err := readUpload(fh)
			if err != nil {
				return nil, apperrors.NewIdentificationInputInvalidError("Could not read uploaded image", fmt.Errorf("%w: %v", ErrMalformedRequest, err))
			}
			input.Images = append(input.Images, img)
		}
		input.Organs = r.MultipartForm.Value["organs"]
	}
	return input, nil
}

func readUpload(fh *multipart.FileHeader) (Image, error) {
	f, err := fh.Open()
	if err != nil {
		return Image{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Image{}, err
	}
	return Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// Validate checks an upload before anything is sent upstream.
func (h *Handler) Validate(input *Input) error {
	if len(input.Images) == 0 {
		return apperrors.NewIdentificationInputInvalidError("No image provided", ErrNoImage)
	}
	if len(input.Organs) == 0 || len(input.Organs) != len(input.Images) {
		return apperrors.NewIdentificationInputInvalidError("Organ types are missing or mismatched", ErrOrganMismatch)
	}
	if h.config.MaxImages > 0 && len(input.Images) > h.config.MaxImages {
		return apperrors.NewIdentificationInputInvalidError(
			fmt.Sprintf("At most %d images can be identified at once", h.config.MaxImages), ErrTooManyImages)
	}
	for _, organ := range input.Organs {
		if !validOrgans[organ] {
			return apperrors.NewIdentificationInputInvalidError(
				fmt.Sprintf("Unsupported organ type %q", organ), ErrInvalidOrgan)
		}
	}
	return nil
}

// Execute validates input, forwards it to PlantNet once and reshapes the answer.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := h.Validate(input); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, span := h.obs.StartSpan(ctx, "plant-identify.identify",
		attribute.Int("images", len(input.Images)),
		attribute.String("organs", strings.Join(input.Organs, ",")),
	)
	defer span.End()

	output, err := h.identify(ctx, input)

	result := "success"
	if err != nil {
		result = string(apperrors.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	}
	metrics.UpstreamRequests.WithLabelValues(upstream, result).Inc()
	h.obs.RecordRequest(ctx, ServiceName, result, time.Since(start))

	if err != nil {
		return nil, err
	}

	h.logger.Info("plant identified", map[string]interface{}{
		"scientificName": output.ScientificName,
		"score":          output.Score,
		"candidates":     len(output.Candidates),
		"remaining":      output.RemainingIdentificationRequests,
		"durationMs":     time.Since(start).Milliseconds(),
	})

	return output, nil
}

func (h *Handler) identify(ctx context.Context, input *Input) (*Output, error) {
	body, contentType, err := encodeUpload(input)
	if err != nil {
		return nil, apperrors.NewIdentificationFailedError(fmt.Errorf("%w: encode upload: %v", ErrIdentifyFailed, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint(), body)
	if err != nil {
		return nil, apperrors.NewIdentificationFailedError(fmt.Errorf("%w: %v", ErrIdentifyFailed, err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, apperrors.NewIdentificationFailedError(fmt.Errorf("%w: %v", ErrIdentifyTimeout, redact(err, h.config.APIKey)))
		}
		return nil, apperrors.NewIdentificationFailedError(fmt.Errorf("%w: %v", ErrIdentifyFailed, redact(err, h.config.APIKey)))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewSpeciesNotFoundError(ErrSpeciesNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.NewIdentificationFailedError(
			fmt.Errorf("%w: status %d: %s", ErrIdentifyFailed, resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var apiResponse identifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, apperrors.NewIdentificationFailedError(fmt.Errorf("%w: decode error: %v", ErrIdentifyFailed, err))
	}
	if len(apiResponse.Results) == 0 {
		return nil, apperrors.NewSpeciesNotFoundError(ErrSpeciesNotFound)
	}

	return h.reshape(&apiResponse), nil
}

func (h *Handler) reshape(apiResponse *identifyResponse) *Output {
	limit := len(apiResponse.Results)
	if h.config.MaxResults > 0 && limit > h.config.MaxResults {
		limit = h.config.MaxResults
	}

	candidates := make([]Candidate, 0, limit)
	for _, r := range apiResponse.Results[:limit] {
		candidates = append(candidates, r.candidate())
	}

	best := candidates[0]
	return &Output{
		ScientificName:                  best.ScientificName,
		CommonNames:                     best.CommonNames,
		Family:                          best.Family,
		Genus:                           best.Genus,
		Score:                           best.Score,
		BestMatch:                       apiResponse.BestMatch,
		Candidates:                      candidates,
		RemainingIdentificationRequests: apiResponse.RemainingIdentificationRequests,
	}
}

func (h *Handler) endpoint() string {
	q := url.Values{}
	q.Set("api-key", h.config.APIKey)
	return fmt.Sprintf("%s/v2/identify/%s?%s",
		strings.TrimRight(h.config.BaseURL, "/"), url.PathEscape(h.config.Project), q.Encode())
}

func encodeUpload(input *Input) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for i, img := range input.Images {
		name := img.Filename
		if name == "" {
			name = fmt.Sprintf("image-%d", i)
		}
		ct := img.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, name))
		header.Set("Content-Type", ct)

		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", err
		}
	}
	for _, organ := range input.Organs {
		if err := mw.WriteField("organs", organ); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// redact keeps the API key out of transport errors, which embed the URL.
func redact(err error, key string) string {
	msg := err.Error()
	if key == "" {
		return msg
	}
	return strings.ReplaceAll(msg, url.QueryEscape(key), "REDACTED")
}

func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
