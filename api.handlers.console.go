package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// screenFor resolves the screen named in the path. It writes the not found
// response itself and returns nil in that case.
func (api *APIHandler) screenFor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) Screen {
	name := ps.ByName("screen")
	screen, err := api.console.Screen(name)
	if err == nil {
		return screen
	}
	api.writeConsoleError(w, r, err, "screen does not exist")
	return nil
}

// consoleErrorStatus maps a console error to its http status.
func consoleErrorStatus(err error) int {
	var validation *ValidationError
	var rejection *ServerRejection
	var transport *TransportError
	var decode *DecodeError
	switch {
	case errors.Is(err, ErrUnknownScreen), errors.Is(err, ErrEntityNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionClosed), errors.Is(err, ErrSessionBusy):
		return http.StatusConflict
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case errors.As(err, &rejection), errors.As(err, &transport), errors.As(err, &decode):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func (api *APIHandler) writeConsoleError(w http.ResponseWriter, r *http.Request, err error, message string) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	status := consoleErrorStatus(err)
	logger := LoggerFromContext(r.Context(), api.logger)
	if status >= http.StatusInternalServerError {
		logger.Error(message, zap.Int("response.status", status), zap.Error(err))
	} else {
		logger.Info(message, zap.Int("response.status", status), zap.Error(err))
	}
	errResp := NewAPIError(requestID, status, message, err.Error())
	if werr := WriteErrorResponse(r.Context(), w, errResp); werr != nil {
		logger.Error("failed to send error response", zap.Error(werr))
	}
}

func (api *APIHandler) writeScreen(w http.ResponseWriter, r *http.Request, status int, message string, screen Screen) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	resp := GenericResponse(requestID, status, message, nil, screen.View())
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		LoggerFromContext(r.Context(), api.logger).Error("failed to send response", zap.Error(err))
	}
}

// ListScreens returns the names of the console screens.
func (api *APIHandler) ListScreens(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	names := api.console.Names()
	total := len(names)
	resp := GenericResponse(requestID, http.StatusOK, "Screens fetched successfully.", &total, names)
	if err := WriteResponse(r.Context(), w, resp); err != nil {
		api.logger.Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// GetScreen returns the current view of a screen.
func (api *APIHandler) GetScreen(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	screen := api.screenFor(w, r, ps)
	if screen == nil {
		return
	}
	api.writeScreen(w, r, http.StatusOK, "Screen fetched successfully.", screen)
}

// MountScreen runs the initial loads of a screen. Load failures are part
// of the returned view, not of the response status.
func (api *APIHandler) MountScreen(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	screen := api.screenFor(w, r, ps)
	if screen == nil {
		return
	}
	if err := screen.Mount(r.Context()); err != nil {
		LoggerFromContext(r.Context(), api.logger).Warn("screen mounted with load failures", zap.String("screen", screen.Name()), zap.Error(err))
	}
	api.writeScreen(w, r, http.StatusOK, "Screen mounted.", screen)
}

// ReloadScreen re-fetches the primary list of a screen.
func (api *APIHandler) ReloadScreen(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	screen := api.screenFor(w, r, ps)
	if screen == nil {
		return
	}
	if err := screen.Reload(r.Context()); err != nil {
		LoggerFromContext(r.Context(), api.logger).Warn("screen reloaded with load failure", zap.String("screen", screen.Name()), zap.Error(err))
	}
	api.writeScreen(w, r, http.StatusOK, "Screen reloaded.", screen)
}

// OpenSession opens the edit dialog. A body with an id edits the listed
// entity, an empty body starts a creation.
func (api *APIHandler) OpenSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	screen := api.screenFor(w, r, ps)
	if screen == nil {
		return
	}
	id, err := DecodeOpenRequestBody(r)
	if err != nil {
		api.writeConsoleError(w, r, err, "invalid session request")
		return
	}
	if err = screen.Open(id); err != nil {
		api.writeConsoleError(w, r, err, "failed to open the session")
		return
	}
	api.writeScreen(w, r, http.StatusOK, "Session opened.", screen)
}

// PatchDraft updates the draft fields of the open session.
func (api *APIHandler) PatchDraft(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	screen := api.screenFor(w, r, ps)
	if screen == nil {
		return
	}
	data, err := ReadRequestBody(r)
	if err != nil {
		api.writeConsoleError(w, r, err, "invalid draft request")
		return
	}
	if err = screen.Patch(data); err != nil {
		api.writeConsoleError(w, r, err, "failed to update the draft")
		return
	}
	api.writeScreen(w, r, http.StatusOK, "Draft updated.", screen)
}

// SubmitSession saves the draft. On failure the response still carries
// the screen view so the dialog can show its inline message.
func (api *APIHandler) SubmitSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	screen := api.screenFor(w, r, ps)
	if screen == nil {
		return
	}
	err := screen.Submit(r.Context())
	if err == nil {
		api.writeScreen(w, r, http.StatusOK, "Session submitted successfully.", screen)
		return
	}
	status := consoleErrorStatus(err)
	if status == http.StatusConflict {
		api.writeConsoleError(w, r, err, "no session to submit")
		return
	}
	LoggerFromContext(r.Context(), api.logger).Info("session submission failed", zap.String("screen", screen.Name()), zap.Int("response.status", status), zap.Error(err))
	requestID := GetValueFromContext(r.Context(), RequestIDContextKey)
	errResp := NewAPIError(requestID, status, "failed to submit the session", screen.View())
	if werr := WriteErrorResponse(r.Context(), w, errResp); werr != nil {
		api.logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(werr))
	}
}

// CancelSession closes the edit dialog and discards its draft.
func (api *APIHandler) CancelSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	screen := api.screenFor(w, r, ps)
	if screen == nil {
		return
	}
	screen.Cancel()
	api.writeScreen(w, r, http.StatusOK, "Session cancelled.", screen)
}

// DeleteItem removes an entity then returns the reloaded screen. A failed
// removal is not reported to the user.
func (api *APIHandler) DeleteItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	screen := api.screenFor(w, r, ps)
	if screen == nil {
		return
	}
	id, err := ParseEntityID(ps.ByName("id"))
	if err != nil {
		api.writeConsoleError(w, r, err, "invalid entity id")
		return
	}
	screen.Delete(r.Context(), id)
	api.writeScreen(w, r, http.StatusOK, "Delete processed.", screen)
}
