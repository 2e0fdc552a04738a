package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/jvarghese/gigwish/internal/ctxhelper"
	"github.com/jvarghese/gigwish/internal/log"
	"github.com/jvarghese/gigwish/internal/models"
	"github.com/kardianos/osext"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	apiBasePath = "/api"
	// The header audience devices use to send their self-derived fingerprint
	fingerprintHeader = "X-Fingerprint"
)

// Defines an error that defines the HTTP status that should be returned
type httpStatuser interface {
	Status() int
}

// Defines an error that returns a machine-readable error code
type errorCoder interface {
	ErrorCode() string
}

// Defines an error that contains a data field with additional information
type dataBearer interface {
	Data() interface{}
}

type errorResponse struct {
	basicResponse
	// The error code
	Error   string      `json:"error"`
	Message string      `json:"errorMessage"`
	Details interface{} `json:"errorDetails,omitempty"`
}

// MakeHTTPHandler creates the main HTTP handler for the Gigwish service
func MakeHTTPHandler(
	songs SongService,
	requests RequestService,
	polls PollService,
	analytics AnalyticsService,
	sServ SessionService,
	cs ConfigService,
	logger *logrus.Entry,
) http.Handler {
	r := mux.NewRouter()

	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(encodeError),
		httptransport.ServerBefore(makeContextInjector(logger)),
		httptransport.ServerBefore(fingerprintDecoder),
		httptransport.ServerBefore(makeSessionDecoder(sServ)),
	}

	// -- Config service -------------------------------
	{
		configEndpoints := MakeConfigEndpoints(cs)

		// GetWhitelist
		r.Methods(http.MethodGet).Path(apiBasePath + "/config/restrictions/whitelist").Handler(httptransport.NewServer(
			configEndpoints.GetWhitelist,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// AddToWhitelist
		r.Methods(http.MethodPost).Path(apiBasePath + "/config/restrictions/whitelist").Handler(httptransport.NewServer(
			configEndpoints.AddToWhitelist,
			decodeFingerprintFromJSONBody,
			encodeJSONResponse,
			options...,
		))

		// RemoveFromWhitelist
		r.Methods(http.MethodDelete).Path(apiBasePath + "/config/restrictions/whitelist/{fingerprint}").Handler(httptransport.NewServer(
			configEndpoints.RemoveFromWhitelist,
			decodeFingerprintFromPath,
			encodeJSONResponse,
			options...,
		))
	}

	// -- Song service ---------------------------------
	{
		sEp := MakeSongEndpoints(songs)

		// Find
		r.Methods(http.MethodGet).Path(apiBasePath + "/songs").Handler(httptransport.NewServer(
			sEp.List,
			decodeSearchRequest,
			encodeJSONResponse,
			options...,
		))

		// Browse (the shared filtered view)
		r.Methods(http.MethodGet).Path(apiBasePath + "/songs/browse").Handler(httptransport.NewServer(
			sEp.Browse,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// SetFilter
		r.Methods(http.MethodPut).Path(apiBasePath + "/songs/browse").Handler(httptransport.NewServer(
			sEp.SetFilter,
			decodeFilterRequest,
			encodeJSONResponse,
			options...,
		))

		// Get
		r.Methods(http.MethodGet).Path(apiBasePath + "/songs/{id}").Handler(httptransport.NewServer(
			sEp.Get,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))

		// Update
		r.Methods(http.MethodPut).Path(apiBasePath + "/songs/{id}").Handler(httptransport.NewServer(
			sEp.Update,
			decodeSongUpdateRequest,
			encodeJSONResponse,
			options...,
		))

		// Delete
		r.Methods(http.MethodDelete).Path(apiBasePath + "/songs/{id}").Handler(httptransport.NewServer(
			sEp.Delete,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))
	}

	// -- Request service ------------------------------
	{
		rEp := MakeRequestEndpoints(requests)

		// Submit
		r.Methods(http.MethodPost).Path(apiBasePath + "/requests").Handler(httptransport.NewServer(
			rEp.Submit,
			decodeSubmitRequest,
			encodeJSONResponse,
			options...,
		))

		// List
		r.Methods(http.MethodGet).Path(apiBasePath + "/requests").Handler(httptransport.NewServer(
			rEp.List,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// NowPlaying
		r.Methods(http.MethodGet).Path(apiBasePath + "/requests/nowPlaying").Handler(httptransport.NewServer(
			rEp.NowPlaying,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// Quota of the calling device
		r.Methods(http.MethodGet).Path(apiBasePath + "/requests/quota").Handler(httptransport.NewServer(
			rEp.Quota,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// Reorder
		r.Methods(http.MethodPut).Path(apiBasePath + "/requests/order").Handler(httptransport.NewServer(
			rEp.Reorder,
			decodeQueueOrderRequest,
			encodeJSONResponse,
			options...,
		))

		// SetStatus
		r.Methods(http.MethodPut).Path(apiBasePath + "/requests/{id}/status").Handler(httptransport.NewServer(
			rEp.SetStatus,
			decodeStatusUpdateRequest,
			encodeJSONResponse,
			options...,
		))

		// Remove
		r.Methods(http.MethodDelete).Path(apiBasePath + "/requests/{id}").Handler(httptransport.NewServer(
			rEp.Remove,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))

		// Clap
		r.Methods(http.MethodPost).Path(apiBasePath + "/claps").Handler(httptransport.NewServer(
			rEp.Clap,
			decodeClapRequest,
			encodeJSONResponse,
			options...,
		))
	}

	// -- Poll service ---------------------------------
	{
		pEp := MakePollEndpoints(polls)

		// Create
		r.Methods(http.MethodPost).Path(apiBasePath + "/polls").Handler(httptransport.NewServer(
			pEp.Create,
			decodeCreatePollRequest,
			encodeJSONResponse,
			options...,
		))

		// List
		r.Methods(http.MethodGet).Path(apiBasePath + "/polls").Handler(httptransport.NewServer(
			pEp.List,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// Active
		r.Methods(http.MethodGet).Path(apiBasePath + "/polls/active").Handler(httptransport.NewServer(
			pEp.Active,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))

		// Vote
		r.Methods(http.MethodPost).Path(apiBasePath + "/polls/{id}/votes").Handler(httptransport.NewServer(
			pEp.Vote,
			decodeVoteRequest,
			encodeJSONResponse,
			options...,
		))

		// Close
		r.Methods(http.MethodPost).Path(apiBasePath + "/polls/{id}/close").Handler(httptransport.NewServer(
			pEp.Close,
			decodeIDFromPath,
			encodeJSONResponse,
			options...,
		))
	}

	// -- Analytics service ----------------------------
	{
		aEp := MakeAnalyticsEndpoints(analytics)

		// Summary
		r.Methods(http.MethodGet).Path(apiBasePath + "/analytics").Handler(httptransport.NewServer(
			aEp.Summary,
			decodeNilRequest,
			encodeJSONResponse,
			options...,
		))
	}

	// -- Session Service ------------------------------
	{
		sEp := MakeSessionEndpoints(sServ)

		// Login
		r.Methods(http.MethodPost).Path(apiBasePath + "/login").Handler(httptransport.NewServer(
			sEp.Login,
			decodeLoginRequest,
			encodeJSONResponse,
			options...,
		))

		// Logout
		r.Methods(http.MethodPost).Path(apiBasePath + "/logout").Handler(httptransport.NewServer(
			sEp.Logout,
			decodeToken,
			encodeJSONResponse,
			options...,
		))

		// WhoAmI
		r.Methods(http.MethodGet).Path(apiBasePath + "/whoami").Handler(httptransport.NewServer(
			sEp.WhoAmI,
			decodeToken,
			encodeJSONResponse,
			options...,
		))
	}

	// Simple alive answer for checking if HTTP can be reached
	r.Methods(http.MethodGet).Path("/alive").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		data := map[string]bool{"ok": true}
		json.NewEncoder(w).Encode(data)
	})

	// Plain file service for the UI serving everything from the "ui" folder right beside the application executable
	execDir, err := osext.ExecutableFolder()
	if err != nil {
		panic(err)
	}
	uiDir := filepath.Join(execDir, "ui")
	r.Methods(http.MethodGet).PathPrefix("/").Handler(http.FileServer(http.Dir(uiDir)))

	return r
}

// decodeNilRequest just does nothing with the request. It is used for endpoints that don't need anything to be passed
func decodeNilRequest(_ context.Context, r *http.Request) (request interface{}, err error) {
	return nil, nil
}

// decodeFingerprintFromJSONBody reads a device fingerprint from a provided JSON body
func decodeFingerprintFromJSONBody(_ context.Context, r *http.Request) (interface{}, error) {
	data := map[string]string{}
	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	fp, ok := data["fingerprint"]
	if !ok {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			"Missing fingerprint parameter",
		)
	}
	return fp, nil
}

func decodeFingerprintFromPath(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	str, ok := vars["fingerprint"]
	if !ok {
		return nil, MakeError(http.StatusBadRequest, ErrCodeRequiredFieldMissing, "Missing fingerprint")
	}
	return str, nil
}

// decodeLoginRequest decodes a login request from the JSON body
func decodeLoginRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req loginRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	return req, nil
}

// decodeToken gets the token from the call's context
func decodeToken(ctx context.Context, r *http.Request) (request interface{}, err error) {
	session := ctxhelper.Session(ctx)
	if session == nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeNotLoggedIn,
			"You need an active session for this operation",
		)
	}
	return session.ID, nil
}

// decodePaginationRequest reads the pagination information from the request's query variables
func decodePaginationRequest(_ context.Context, r *http.Request) (request interface{}, err error) {
	val := r.URL.Query()
	pag := Pagination{
		Limit: 50,
	}
	if i, err := strconv.ParseUint(val.Get("offset"), 10, 64); err == nil {
		pag.Offset = uint(i)
	}
	if i, err := strconv.ParseUint(val.Get("limit"), 10, 64); err == nil {
		pag.Limit = uint(i)
	}
	return pag, nil
}

// decodeSearchRequest decodes the parameters of a search by checking the GET variables "search", "limit" and "offset"
func decodeSearchRequest(ctx context.Context, r *http.Request) (request interface{}, err error) {
	val := r.URL.Query()
	pag, _ := decodePaginationRequest(ctx, r)
	search := Search{
		Search:     val.Get("search"),
		Pagination: pag.(Pagination),
	}
	return search, nil
}

// decodeSongUpdateRequest decodes information of the song to update from the JSON body and gets the song's ID
// from the path
func decodeSongUpdateRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	var song models.Song
	if err := json.NewDecoder(r.Body).Decode(&song); err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	id, err := decodeIDFromPath(ctx, r)
	if err != nil {
		return nil, err
	}
	song.ID = id.(string)
	return song, nil
}

// decodeFilterRequest reads a browse filter change from the request's JSON body
func decodeFilterRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	return req, nil
}

// decodeSubmitRequest reads a new song request from the request's JSON body
func decodeSubmitRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req submitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	if strings.TrimSpace(req.SongID) == "" {
		return nil, MakeError(http.StatusBadRequest, ErrCodeRequiredFieldMissing, "Missing song ID")
	}
	return req, nil
}

// decodeStatusUpdateRequest reads a status change from the JSON body and the request's ID from the path
func decodeStatusUpdateRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	id, err := decodeIDFromPath(ctx, r)
	if err != nil {
		return nil, err
	}
	req.ID = id.(string)
	return req, nil
}

// decodeQueueOrderRequest reads the new queue order from the request's JSON body
func decodeQueueOrderRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req queueOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	return req, nil
}

// decodeClapRequest reads a clap from the request's JSON body - an empty body is a plain global clap
func decodeClapRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req clapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	return req, nil
}

// decodeCreatePollRequest reads a new poll from the request's JSON body
func decodeCreatePollRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req createPollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	return req, nil
}

// decodeVoteRequest reads a vote from the JSON body and the poll's ID from the path
func decodeVoteRequest(ctx context.Context, r *http.Request) (interface{}, error) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, MakeError(
			http.StatusBadRequest,
			ErrCodeIllegalJSON,
			fmt.Sprintf("Failed to decode JSON body: %v", err),
		)
	}
	id, err := decodeIDFromPath(ctx, r)
	if err != nil {
		return nil, err
	}
	req.PollID = id.(string)
	return req, nil
}

// Decodes an ID from the "id" path variable provided by GoRilla
func decodeIDFromPath(ctx context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	str, ok := vars["id"]
	if !ok {
		return nil, MakeError(http.StatusBadRequest, ErrCodeRequiredFieldMissing, "No ID provided")
	}
	return str, nil
}

// Encodes a typical JSON response
func encodeJSONResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}

// Builds an error response based on the incoming error
func encodeError(_ context.Context, err error, w http.ResponseWriter) {
	if err == nil {
		panic("encodeError with nil error")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if st, ok := err.(httpStatuser); ok {
		w.WriteHeader(st.Status())
	} else {
		w.WriteHeader(http.StatusInternalServerError)
	}
	ret := errorResponse{
		basicResponse: basicResponse{false, nil},
		Message:       err.Error(),
		Error:         ErrCodeUnknown,
	}
	if cd, ok := err.(errorCoder); ok {
		ret.Error = cd.ErrorCode()
	}
	if db, ok := err.(dataBearer); ok {
		if data := db.Data(); data != nil {
			if err, ok := data.(error); ok {
				ret.Details = err.Error()
			} else {
				ret.Details = data
			}
		}
	}
	json.NewEncoder(w).Encode(&ret)
}

var portSuffix = regexp.MustCompile(":[0-9]+$")

// fingerprintDecoder derives the calling device's fingerprint and places it into the context.
// Devices running the web client send their own canvas-based fingerprint in a header; for
// everything else a fallback is derived from the request signals the client cannot easily
// vary by accident.
func fingerprintDecoder(ctx context.Context, r *http.Request) context.Context {
	fp := strings.TrimSpace(r.Header.Get(fingerprintHeader))
	if fp == "" {
		var remoteIP string
		if fwdIP := r.Header.Get("X-Forwarded-For"); fwdIP != "" {
			// We have a X-Forwarded-For header that means we're behind a proxy
			remoteIP = fwdIP
		} else {
			// Use the requesting host
			remoteIP = portSuffix.ReplaceAllString(r.RemoteAddr, "")
		}
		fp = models.DeriveFingerprint(
			r.Header.Get("User-Agent"),
			r.Header.Get("Accept-Language"),
			remoteIP,
		)
	}
	return context.WithValue(ctx, ctxhelper.KeyFingerprint, fp)
}

// makeSessionDecoder returns a function that is used in every HTTP call to decode the session used, if a session
// token is sent by the client
func makeSessionDecoder(s SessionService) httptransport.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		token := strings.TrimSpace(r.Header.Get("token"))
		logger := ctxhelper.Logger(ctx)
		if token != "" {
			// Try to load the session's data
			sess, err := s.GetContents(ctx, token, true)
			if err != nil {
				logger.WithError(err).WithField(log.FldSession, token).Error("Failed to retrieve session information")
				return ctx
			}
			if sess == nil {
				// The admin view stays locked
				return ctx
			}
			ctx = context.WithValue(ctx, ctxhelper.KeySession, *sess)
			ctx = context.WithValue(ctx, ctxhelper.KeyLogger, logger.WithField(log.FldSession, sess.ID))
		}
		return ctx
	}
}

func makeContextInjector(logger *logrus.Entry) httptransport.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		return context.WithValue(ctx, ctxhelper.KeyLogger, logger)
	}
}
