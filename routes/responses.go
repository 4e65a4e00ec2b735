// routes/responses.go
package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	wqerrors "github.com/LilVoxy/water_quality/errors"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Error encoding JSON response: %v", err)
	}
}

// writeError maps err onto its HTTP status
func writeError(w http.ResponseWriter, err error) {
	status := wqerrors.HTTPStatusOf(err)
	resp := ErrorResponse{Error: err.Error()}
	if typ, ok := wqerrors.TypeOf(err); ok {
		resp.Type = string(typ)
		var qe wqerrors.QualityError
		if errors.As(err, &qe) && status < http.StatusInternalServerError {
			resp.Error = qe.Message()
		}
	}
	if status >= http.StatusInternalServerError {
		log.Printf("❌ %v", err)
	}
	writeJSON(w, status, resp)
}

// decodeAndValidate reads a JSON body into dst and runs the struct tags
func (api *API) decodeAndValidate(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return wqerrors.New(wqerrors.ErrorTypeInputValidation, wqerrors.ErrInvalidInput, "invalid JSON body: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return wqerrors.New(wqerrors.ErrorTypeInputValidation, wqerrors.ErrInvalidInput,
			"invalid JSON body: unexpected data after the object")
	}
	if err := api.validate.Struct(dst); err != nil {
		return wqerrors.New(wqerrors.ErrorTypeInputValidation, wqerrors.ErrInvalidInput, "%s", describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be <= %s", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
