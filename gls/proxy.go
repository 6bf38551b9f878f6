package gls

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-kit/kit/log"
)

//HandlerConfig to create mux
type HandlerConfig struct {
	Client Service
	Logger log.Logger
	// ClientNumber is set on posted parcels that come without one
	ClientNumber int
}

type proxy struct {
	mux    *chi.Mux
	config *HandlerConfig
}

func (p *proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mux.ServeHTTP(w, r)
}

//NewHandler creates http.Handler exposing the service operations
func NewHandler(config *HandlerConfig) http.Handler {
	if config.Logger == nil {
		config.Logger = log.NewNopLogger()
	}
	return &proxy{
		config: config,
		mux:    createRouter(config),
	}
}

func createRouter(config *HandlerConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/api", func(r chi.Router) {
		r.Route("/labels", func(r chi.Router) {
			r.Post("/", config.PrintLabels)
			r.Delete("/", config.DeleteLabels)
		})
		r.Get("/status/{parcelNumber}", config.GetParcelStatuses)
	})
	return r
}

// printLabelsBody is the PrintLabels request body of the proxy
type printLabelsBody struct {
	ParcelList      []Parcel `json:"parcel_list"`
	PrintPosition   int      `json:"print_position"`
	ShowPrintDialog bool     `json:"show_print_dialog"`
}

// deleteLabelsBody is the DeleteLabels request body of the proxy
type deleteLabelsBody struct {
	ParcelIDList    []int64 `json:"parcel_id_list"`
	PrintPosition   int     `json:"print_position"`
	ShowPrintDialog bool    `json:"show_print_dialog"`
}

//PrintLabels answers the label PDF, or the service answer if it has no labels
func (c *HandlerConfig) PrintLabels(w http.ResponseWriter, r *http.Request) {
	var body printLabelsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if len(body.ParcelList) == 0 {
		render.Render(w, r, ErrInvalidRequest(errors.New("parcel_list is empty")))
		return
	}
	for i := range body.ParcelList {
		if body.ParcelList[i].ClientNumber == 0 {
			body.ParcelList[i].ClientNumber = c.ClientNumber
		}
	}

	resp, err := c.Client.PrintLabels(r.Context(), PrintLabelsRequest{
		ParcelList:      body.ParcelList,
		PrintPosition:   body.PrintPosition,
		ShowPrintDialog: body.ShowPrintDialog,
	})
	if err != nil {
		c.Logger.Log("method", OpPrintLabels, "err", err.Error())
		render.Render(w, r, ErrUpstream(err))
		return
	}

	pdf, ok, err := resp.Labels()
	if err != nil || !ok {
		c.writeRaw(w, resp)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", labelsFileName(body.ParcelList)))
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(pdf); err != nil {
		c.Logger.Log("method", OpPrintLabels, "err", err.Error())
	}
}

//DeleteLabels passes the service answer through
func (c *HandlerConfig) DeleteLabels(w http.ResponseWriter, r *http.Request) {
	var body deleteLabelsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if len(body.ParcelIDList) == 0 {
		render.Render(w, r, ErrInvalidRequest(errors.New("parcel_id_list is empty")))
		return
	}

	resp, err := c.Client.DeleteLabels(r.Context(), DeleteLabelsRequest{
		ParcelIDList:    body.ParcelIDList,
		PrintPosition:   body.PrintPosition,
		ShowPrintDialog: body.ShowPrintDialog,
	})
	if err != nil {
		c.Logger.Log("method", OpDeleteLabels, "err", err.Error())
		render.Render(w, r, ErrUpstream(err))
		return
	}
	c.writeRaw(w, resp)
}

//GetParcelStatuses passes the service answer through.
//Query: lang (default EN), pod=1 to get proof of delivery
func (c *HandlerConfig) GetParcelStatuses(w http.ResponseWriter, r *http.Request) {
	parcelNumber, err := strconv.ParseInt(chi.URLParam(r, "parcelNumber"), 10, 64)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("wrong parcel number: %w", err)))
		return
	}
	lang := strings.ToUpper(r.URL.Query().Get("lang"))
	if lang == "" {
		lang = "EN"
	}
	if !IsSupportedStatusLanguage(lang) {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("unsupported language %s", lang)))
		return
	}
	pod, _ := strconv.ParseBool(r.URL.Query().Get("pod"))

	resp, err := c.Client.GetParcelStatuses(r.Context(), GetParcelStatusesRequest{
		ParcelNumber:    parcelNumber,
		ReturnPOD:       pod,
		LanguageIsoCode: lang,
	})
	if err != nil {
		c.Logger.Log("method", OpGetParcelStatuses, "err", err.Error())
		render.Render(w, r, ErrUpstream(err))
		return
	}
	c.writeRaw(w, resp)
}

func (c *HandlerConfig) writeRaw(w http.ResponseWriter, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp.Raw); err != nil {
		c.Logger.Log("err", err.Error())
	}
}

func labelsFileName(parcels []Parcel) string {
	if len(parcels) == 1 && parcels[0].ClientReference != "" {
		return parcels[0].ClientReference
	}
	return "labels"
}

//--
// Error response payloads & renderers
//--

// ErrResponse renderer type for handling all sorts of errors.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText string `json:"status"`          // user-level status message
	AppCode    int64  `json:"code,omitempty"`  // upstream http status, if any
	ErrorText  string `json:"error,omitempty"` // application-level error message, for debugging
}

//Render implement Renderer
func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if e.HTTPStatusCode == 0 {
		e.HTTPStatusCode = 400
	}
	if e.ErrorText == "" && e.Err != nil {
		e.ErrorText = e.Err.Error()
	}
	render.Status(r, e.HTTPStatusCode)
	return nil
}

//ErrInvalidRequest creates ErrInvalidRequest response from error
func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

//ErrUpstream creates response from a service call error
func ErrUpstream(err error) render.Renderer {
	var (
		he *HTTPError
		te *TransportError
	)
	switch {
	case errors.As(err, &he):
		return &ErrResponse{Err: err, HTTPStatusCode: 502, StatusText: "Service error.", AppCode: int64(he.StatusCode)}
	case errors.As(err, &te):
		return &ErrResponse{Err: err, HTTPStatusCode: 504, StatusText: "Service unavailable."}
	}
	return &ErrResponse{Err: err, HTTPStatusCode: 502, StatusText: "Wrong service response."}
}
