package rest

import (
	"context"
	"errors"
	"fmt"
	"lintang/kurirx/pkg/engine/solver"
	"lintang/kurirx/pkg/server"
	"lintang/kurirx/pkg/transit"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type TransitService interface {
	AddVertex(ctx context.Context, code string) error
	AddConnection(ctx context.Context, src, dst, conn string,
		dep, dur, tip, tap, top int64, cost *float64) error
	AddContinuousConnection(ctx context.Context, src, dst, conn string,
		tip, tap, top int64, cost *float64) error
	ToggleConnection(ctx context.Context, conn string, enabled bool) error
	LookupConnection(ctx context.Context, src, conn string) (transit.Edge, transit.Vertex, error)
	FindPath(ctx context.Context, src, dst string, tStart, tMax int64, mode solver.Mode) ([]solver.PathHop, error)
}

type TransitHandler struct {
	svc          TransitService
	promeMetrics *metrics
}

func TransitRouter(r *chi.Mux, svc TransitService, m *metrics) {
	handler := &TransitHandler{svc, m}

	r.Group(func(r chi.Router) {
		r.Route("/api/network", func(r chi.Router) {
			r.Post("/vertices", handler.addVertex)
			r.Post("/connections", handler.addConnection)
			r.Post("/connections/continuous", handler.addContinuousConnection)
			r.Put("/connections/{code}/state", handler.toggleConnection)
			r.Get("/connections/{code}", handler.lookupConnection)
			r.Post("/paths", handler.findPath)
			r.Get("/hello", handler.Hello)
		})
	})
}

// AddVertexRequest model info
//
//	@Description	request body untuk menambahkan delivery center baru
type AddVertexRequest struct {
	Code string `json:"code" validate:"required"`
}

func (s *AddVertexRequest) Bind(r *http.Request) error {
	if s.Code == "" {
		return errors.New("invalid request")
	}
	return nil
}

// AddConnectionRequest model info
//
//	@Description	request body untuk menambahkan scheduled connection antara 2 delivery center
type AddConnectionRequest struct {
	Src  string   `json:"src" validate:"required"`
	Dst  string   `json:"dst" validate:"required"`
	Code string   `json:"code" validate:"required"`
	Dep  int64    `json:"dep" validate:"gte=0,lt=86400"`
	Dur  int64    `json:"dur" validate:"gte=0"`
	Tip  int64    `json:"tip" validate:"gte=0"`
	Tap  int64    `json:"tap" validate:"gte=0"`
	Top  int64    `json:"top" validate:"gte=0"`
	Cost *float64 `json:"cost" validate:"omitempty,gte=0"`
}

func (s *AddConnectionRequest) Bind(r *http.Request) error {
	if s.Src == "" || s.Dst == "" || s.Code == "" {
		return errors.New("invalid request")
	}
	return nil
}

// AddContinuousConnectionRequest model info
//
//	@Description	request body untuk menambahkan continuous connection (selalu tersedia, tanpa jadwal)
type AddContinuousConnectionRequest struct {
	Src  string   `json:"src" validate:"required"`
	Dst  string   `json:"dst" validate:"required"`
	Code string   `json:"code" validate:"required"`
	Tip  int64    `json:"tip" validate:"gte=0"`
	Tap  int64    `json:"tap" validate:"gte=0"`
	Top  int64    `json:"top" validate:"gte=0"`
	Cost *float64 `json:"cost" validate:"omitempty,gte=0"`
}

func (s *AddContinuousConnectionRequest) Bind(r *http.Request) error {
	if s.Src == "" || s.Dst == "" || s.Code == "" {
		return errors.New("invalid request")
	}
	return nil
}

// ToggleConnectionRequest model info
//
//	@Description	request body untuk mengaktifkan/menonaktifkan connection
type ToggleConnectionRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (s *ToggleConnectionRequest) Bind(r *http.Request) error {
	if s.Enabled == nil {
		return errors.New("invalid request")
	}
	return nil
}

// FindPathRequest model info
//
//	@Description	request body untuk query jalur pengiriman antara 2 delivery center
type FindPathRequest struct {
	Src    string `json:"src" validate:"required"`
	Dst    string `json:"dst" validate:"required"`
	TStart int64  `json:"t_start" validate:"gte=0"`
	TMax   int64  `json:"t_max" validate:"gte=0"`
	Mode   string `json:"mode" validate:"required,oneof=RCSP STSP"`
}

func (s *FindPathRequest) Bind(r *http.Request) error {
	if s.Src == "" || s.Dst == "" {
		return errors.New("invalid request")
	}
	return nil
}

// StatusResponse model info
//
//	@Description	response body untuk command yang tidak mengembalikan data
type StatusResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

func NewStatusOKResponse() *StatusResponse {
	return &StatusResponse{Success: true, Status: "ok"}
}

// ConnectionResponse model info
//
//	@Description	response body untuk lookup connection
type ConnectionResponse struct {
	Success     bool    `json:"success"`
	Code        string  `json:"code"`
	Destination string  `json:"dst"`
	Continuous  bool    `json:"continuous"`
	Dep         int64   `json:"dep"`
	Dur         int64   `json:"dur"`
	Tip         int64   `json:"tip"`
	Tap         int64   `json:"tap"`
	Top         int64   `json:"top"`
	Cost        float64 `json:"cost"`
}

func NewConnectionResponse(edge transit.Edge, dst transit.Vertex) *ConnectionResponse {
	return &ConnectionResponse{
		Success:     true,
		Code:        edge.Code,
		Destination: dst.Code,
		Continuous:  edge.Continuous,
		Dep:         edge.Dep,
		Dur:         edge.Dur,
		Tip:         edge.Tip,
		Tap:         edge.Tap,
		Top:         edge.Top,
		Cost:        edge.Cost,
	}
}

// PathResponse model info
//
//	@Description	response body untuk query jalur pengiriman
type PathResponse struct {
	Success bool             `json:"success"`
	Found   bool             `json:"found"`
	Hops    []solver.PathHop `json:"hops"`
	Expense float64          `json:"expense,omitempty"`
	Arrival int64            `json:"arrival,omitempty"`
}

func NewPathResponse(hops []solver.PathHop) *PathResponse {
	resp := &PathResponse{
		Success: true,
		Found:   len(hops) > 0,
		Hops:    hops,
	}
	if len(hops) > 0 {
		last := hops[len(hops)-1]
		resp.Expense = last.Cost.Expense
		resp.Arrival = last.Arrival
	}
	return resp
}

// addVertex
//
//	@Summary		menambahkan delivery center baru ke jaringan
//	@Description	menambahkan delivery center baru ke jaringan. Code harus unik
//	@Tags			network
//	@Param			body	body	AddVertexRequest	true	"request body tambah delivery center"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/network/vertices [post]
//	@Success		200	{object}	StatusResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		409	{object}	ErrResponse
func (h *TransitHandler) addVertex(w http.ResponseWriter, r *http.Request) {
	data := &AddVertexRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	if err := h.svc.AddVertex(r.Context(), data.Code); err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewStatusOKResponse())
}

// addConnection
//
//	@Summary		menambahkan scheduled connection antara 2 delivery center
//	@Description	menambahkan scheduled connection antara 2 delivery center. Departure dalam detik sejak tengah malam
//	@Tags			network
//	@Param			body	body	AddConnectionRequest	true	"request body tambah connection"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/network/connections [post]
//	@Success		200	{object}	StatusResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		409	{object}	ErrResponse
func (h *TransitHandler) addConnection(w http.ResponseWriter, r *http.Request) {
	data := &AddConnectionRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	err := h.svc.AddConnection(r.Context(), data.Src, data.Dst, data.Code,
		data.Dep, data.Dur, data.Tip, data.Tap, data.Top, data.Cost)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewStatusOKResponse())
}

// addContinuousConnection
//
//	@Summary		menambahkan continuous connection antara 2 delivery center
//	@Description	menambahkan continuous connection antara 2 delivery center. Selalu tersedia, tidak menunggu jadwal keberangkatan
//	@Tags			network
//	@Param			body	body	AddContinuousConnectionRequest	true	"request body tambah continuous connection"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/network/connections/continuous [post]
//	@Success		200	{object}	StatusResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		409	{object}	ErrResponse
func (h *TransitHandler) addContinuousConnection(w http.ResponseWriter, r *http.Request) {
	data := &AddContinuousConnectionRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	err := h.svc.AddContinuousConnection(r.Context(), data.Src, data.Dst, data.Code,
		data.Tip, data.Tap, data.Top, data.Cost)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewStatusOKResponse())
}

// toggleConnection
//
//	@Summary		mengaktifkan atau menonaktifkan connection
//	@Description	mengaktifkan atau menonaktifkan connection. Connection yang nonaktif tidak dipakai solver
//	@Tags			network
//	@Param			code	path	string					true	"kode connection"
//	@Param			body	body	ToggleConnectionRequest	true	"request body toggle connection"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/network/connections/{code}/state [put]
//	@Success		200	{object}	StatusResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *TransitHandler) toggleConnection(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		render.Render(w, r, ErrInvalidRequest(errors.New("invalid request")))
		return
	}

	data := &ToggleConnectionRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	if err := h.svc.ToggleConnection(r.Context(), code, *data.Enabled); err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewStatusOKResponse())
}

// lookupConnection
//
//	@Summary		lookup satu connection yang berangkat dari delivery center src
//	@Description	lookup satu connection yang berangkat dari delivery center src
//	@Tags			network
//	@Param			code	path	string	true	"kode connection"
//	@Param			src		query	string	true	"kode delivery center asal"
//	@Produce		application/json
//	@Router			/network/connections/{code} [get]
//	@Success		200	{object}	ConnectionResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *TransitHandler) lookupConnection(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	src := r.URL.Query().Get("src")
	if code == "" || src == "" {
		render.Render(w, r, ErrInvalidRequest(errors.New("invalid request")))
		return
	}

	edge, dst, err := h.svc.LookupConnection(r.Context(), src, code)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewConnectionResponse(edge, dst))
}

// findPath
//
//	@Summary		query jalur pengiriman antara 2 delivery center
//	@Description	query jalur pengiriman antara 2 delivery center. Mode RCSP meminimalkan biaya dengan deadline, STSP meminimalkan waktu tiba
//	@Tags			network
//	@Param			body	body	FindPathRequest	true	"request body query jalur"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/network/paths [post]
//	@Success		200	{object}	PathResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
func (h *TransitHandler) findPath(w http.ResponseWriter, r *http.Request) {
	data := &FindPathRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	mode := solver.ModeRCSP
	if data.Mode == "STSP" {
		mode = solver.ModeSTSP
	}

	h.promeMetrics.FindPathQueryCount.WithLabelValues(data.Mode).Inc()
	hops, err := h.svc.FindPath(r.Context(), data.Src, data.Dst, data.TStart, data.TMax, mode)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewPathResponse(hops))
}

func (h *TransitHandler) Hello(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, "Hello, World!")
}

// ErrResponse model info
//
//	@Description	model untuk error response
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	Success       bool     `json:"success"`
	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInternalServerErrorRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 500,
		StatusText:     "Internal server error.",
		ErrorText:      err.Error(),
	}
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 422,
		StatusText:     "Error rendering response.",
		ErrorText:      err.Error(),
	}
}

func ErrChi(err error) render.Renderer {
	statusText := ""
	switch getStatusCode(err) {
	case http.StatusNotFound:
		statusText = "Resource not found."
	case http.StatusInternalServerError:
		statusText = "Internal server error."
	case http.StatusConflict:
		statusText = "Resource conflict."
	case http.StatusBadRequest:
		statusText = "Bad request."
	default:
		statusText = "Error."
	}

	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: getStatusCode(err),
		StatusText:     statusText,
		ErrorText:      err.Error(),
	}
}

func getStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var ierr *server.Error
	if !errors.As(err, &ierr) {
		return http.StatusInternalServerError
	} else {
		switch ierr.Code() {
		case server.ErrInternalServerError:
			return http.StatusInternalServerError
		case server.ErrNotFound:
			return http.StatusNotFound
		case server.ErrConflict:
			return http.StatusConflict
		case server.ErrBadParamInput:
			return http.StatusBadRequest
		default:
			return http.StatusInternalServerError
		}
	}

}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}
