package internal

import (
	"fmt"

	"github.com/go-kit/kit/endpoint"
	"github.com/jvarghese/gigwish/internal/models"
	"golang.org/x/net/context"
)

// SongEndpoints is a collection of endpoints to the song service
type SongEndpoints struct {
	List      endpoint.Endpoint
	Get       endpoint.Endpoint
	Update    endpoint.Endpoint
	Delete    endpoint.Endpoint
	SetFilter endpoint.Endpoint
	Browse    endpoint.Endpoint
}

// RequestEndpoints is a collection of endpoints for working with the request queue
type RequestEndpoints struct {
	Submit     endpoint.Endpoint
	List       endpoint.Endpoint
	NowPlaying endpoint.Endpoint
	SetStatus  endpoint.Endpoint
	Remove     endpoint.Endpoint
	Reorder    endpoint.Endpoint
	Clap       endpoint.Endpoint
	Quota      endpoint.Endpoint
}

// PollEndpoints is a collection of endpoints for working with the poll service
type PollEndpoints struct {
	Create endpoint.Endpoint
	Vote   endpoint.Endpoint
	Close  endpoint.Endpoint
	List   endpoint.Endpoint
	Active endpoint.Endpoint
}

// AnalyticsEndpoints is a collection of endpoints for the analytics service
type AnalyticsEndpoints struct {
	Summary endpoint.Endpoint
}

// SessionEndpoints is a collection of endpoints for working with the session service
type SessionEndpoints struct {
	Login  endpoint.Endpoint
	Logout endpoint.Endpoint
	WhoAmI endpoint.Endpoint
}

// ConfigEndpoints is a collection of endpoints for changing the system's configuration
type ConfigEndpoints struct {
	GetWhitelist        endpoint.Endpoint
	AddToWhitelist      endpoint.Endpoint
	RemoveFromWhitelist endpoint.Endpoint
}

// The base for all responses which always contains an "ok" property to show if the call was successful and a
// data element containing the result of the request
type basicResponse struct {
	OK   bool        `json:"ok"`
	Data interface{} `json:"data,omitempty"`
}

type pagingResponse struct {
	Rows uint        `json:"rows"`
	List interface{} `json:"list"`
}

// A request made when submitting a new song request
type submitRequestBody struct {
	SongID        string `json:"songId"`
	RequesterName string `json:"requesterName"`
	Dedication    string `json:"dedication"`
}

// A request made when changing the status of a song request
type statusUpdateRequest struct {
	ID     string
	Status string `json:"status"`
}

// A request for replacing the queue order
type queueOrderRequest struct {
	IDs []string `json:"ids"`
}

// A request made when giving a clap
type clapRequest struct {
	RequestID string `json:"requestId"`
}

// A request made when opening a new poll
type createPollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// A request made when casting a vote
type voteRequest struct {
	PollID string
	Option string `json:"option"`
}

// A request made when changing the browse filter
type filterRequest struct {
	Query    string `json:"query"`
	Category string `json:"category"`
}

// A request made when unlocking the admin view
type loginRequest struct {
	PIN string `json:"pin"`
}

// -- Configuration ----------------------------------------------------------------------------------------------------

// MakeConfigEndpoints creates the endpoints needed to use the configuration service
func MakeConfigEndpoints(s ConfigService) ConfigEndpoints {
	return ConfigEndpoints{
		GetWhitelist:        EnsureAdminSession(MakeGetWhitelistEndpoint(s)),
		AddToWhitelist:      EnsureAdminSession(MakeAddToWhitelistEndpoint(s)),
		RemoveFromWhitelist: EnsureAdminSession(MakeRemoveFromWhitelistEndpoint(s)),
	}
}

// MakeGetWhitelistEndpoint returns and endpoint calling the WhitelistedFingerprints method of the ConfigService
func MakeGetWhitelistEndpoint(s ConfigService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return basicResponse{true, s.WhitelistedFingerprints(ctx)}, nil
	}
}

// MakeAddToWhitelistEndpoint returns and endpoint calling the AddToWhitelist method of the ConfigService
func MakeAddToWhitelistEndpoint(s ConfigService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		fp, ok := request.(string)
		if !ok {
			return nil, fmt.Errorf("missing fingerprint parameter")
		}
		if err := s.AddToWhitelist(ctx, fp); err != nil {
			return nil, err
		}
		return basicResponse{true, nil}, nil
	}
}

// MakeRemoveFromWhitelistEndpoint returns and endpoint calling the RemoveFromWhitelist method of the ConfigService
func MakeRemoveFromWhitelistEndpoint(s ConfigService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		fp, ok := request.(string)
		if !ok {
			return nil, fmt.Errorf("missing fingerprint parameter")
		}
		if err := s.RemoveFromWhitelist(ctx, fp); err != nil {
			return nil, err
		}
		return basicResponse{true, nil}, nil
	}
}

// -- Song catalog -----------------------------------------------------------------------------------------------------

// MakeSongEndpoints creates the endpoints needed for using the song service
func MakeSongEndpoints(s SongService) SongEndpoints {
	return SongEndpoints{
		List:      MakeListSongsEndpoint(s),
		Get:       MakeGetSongEndpoint(s),
		Update:    EnsureAdminSession(MakeUpdateSongEndpoint(s)),
		Delete:    EnsureAdminSession(MakeDeleteSongEndpoint(s)),
		SetFilter: MakeSetFilterEndpoint(s),
		Browse:    MakeBrowseEndpoint(s),
	}
}

// MakeListSongsEndpoint returns an endpoint calling the List method on the provided SongService
func MakeListSongsEndpoint(s SongService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		search, ok := request.(Search)
		if !ok {
			return nil, fmt.Errorf("illegal search parameter")
		}
		songs, numRows, err := s.List(ctx, &search)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, pagingResponse{numRows, songs}}, nil
	}
}

// MakeGetSongEndpoint returns an endpoint calling the Get method on the provided SongService
func MakeGetSongEndpoint(s SongService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(string)
		if !ok {
			return nil, fmt.Errorf("illegal song ID parameter")
		}
		song, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, song}, nil
	}
}

// MakeUpdateSongEndpoint returns an endpoint calling the Update method on the provided SongService
func MakeUpdateSongEndpoint(s SongService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		song, ok := request.(models.Song)
		if !ok {
			return nil, fmt.Errorf("illegal song parameter")
		}
		if err := s.Update(ctx, &song); err != nil {
			return nil, err
		}
		return basicResponse{true, nil}, nil
	}
}

// MakeDeleteSongEndpoint returns an endpoint calling the Delete method on the provided SongService
func MakeDeleteSongEndpoint(s SongService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(string)
		if !ok {
			return nil, fmt.Errorf("illegal song ID parameter")
		}
		if err := s.Delete(ctx, id); err != nil {
			return nil, err
		}
		return basicResponse{true, nil}, nil
	}
}

// MakeSetFilterEndpoint returns an endpoint calling the SetFilter method on the provided SongService
func MakeSetFilterEndpoint(s SongService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(filterRequest)
		if !ok {
			return nil, fmt.Errorf("illegal filter request")
		}
		songs, err := s.SetFilter(ctx, req.Query, req.Category)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, songs}, nil
	}
}

// MakeBrowseEndpoint returns an endpoint calling the Browse method on the provided SongService
func MakeBrowseEndpoint(s SongService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		res, err := s.Browse(ctx)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, res}, nil
	}
}

// -- Song requests ----------------------------------------------------------------------------------------------------

// MakeRequestEndpoints creates the endpoints needed for using the request service
func MakeRequestEndpoints(s RequestService) RequestEndpoints {
	return RequestEndpoints{
		Submit:     MakeSubmitRequestEndpoint(s),
		List:       MakeListRequestsEndpoint(s),
		NowPlaying: MakeNowPlayingEndpoint(s),
		SetStatus:  EnsureAdminSession(MakeSetRequestStatusEndpoint(s)),
		Remove:     EnsureAdminSession(MakeRemoveRequestEndpoint(s)),
		Reorder:    EnsureAdminSession(MakeReorderRequestsEndpoint(s)),
		Clap:       MakeClapEndpoint(s),
		Quota:      MakeQuotaEndpoint(s),
	}
}

// MakeSubmitRequestEndpoint returns an endpoint calling the Submit method on the provided RequestService
func MakeSubmitRequestEndpoint(s RequestService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(submitRequestBody)
		if !ok {
			return nil, fmt.Errorf("illegal request submission")
		}
		res, err := s.Submit(ctx, req.SongID, req.RequesterName, req.Dedication)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, res}, nil
	}
}

// MakeListRequestsEndpoint returns an endpoint calling the List method on the provided RequestService
func MakeListRequestsEndpoint(s RequestService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		list, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, list}, nil
	}
}

// MakeNowPlayingEndpoint returns an endpoint calling the NowPlaying method on the provided RequestService
func MakeNowPlayingEndpoint(s RequestService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, err := s.NowPlaying(ctx)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, req}, nil
	}
}

// MakeSetRequestStatusEndpoint returns an endpoint calling the SetStatus method on the provided RequestService
func MakeSetRequestStatusEndpoint(s RequestService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(statusUpdateRequest)
		if !ok {
			return nil, fmt.Errorf("illegal status update request")
		}
		res, err := s.SetStatus(ctx, req.ID, req.Status)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, res}, nil
	}
}

// MakeRemoveRequestEndpoint returns an endpoint calling the Remove method on the provided RequestService
func MakeRemoveRequestEndpoint(s RequestService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(string)
		if !ok {
			return nil, fmt.Errorf("illegal request ID parameter")
		}
		if err := s.Remove(ctx, id); err != nil {
			return nil, err
		}
		return basicResponse{true, nil}, nil
	}
}

// MakeReorderRequestsEndpoint returns an endpoint calling the Reorder method on the provided RequestService
func MakeReorderRequestsEndpoint(s RequestService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(queueOrderRequest)
		if !ok {
			return nil, fmt.Errorf("illegal reorder request")
		}
		list, err := s.Reorder(ctx, req.IDs)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, list}, nil
	}
}

// MakeClapEndpoint returns an endpoint calling the Clap method on the provided RequestService
func MakeClapEndpoint(s RequestService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(clapRequest)
		if !ok {
			return nil, fmt.Errorf("illegal clap request")
		}
		total, err := s.Clap(ctx, req.RequestID)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, map[string]uint{"totalClaps": total}}, nil
	}
}

// MakeQuotaEndpoint returns an endpoint calling the Quota method on the provided RequestService
func MakeQuotaEndpoint(s RequestService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		info, err := s.Quota(ctx)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, info}, nil
	}
}

// -- Polls ------------------------------------------------------------------------------------------------------------

// MakePollEndpoints creates the endpoints needed for using the poll service
func MakePollEndpoints(s PollService) PollEndpoints {
	return PollEndpoints{
		Create: EnsureAdminSession(MakeCreatePollEndpoint(s)),
		Vote:   MakeVoteEndpoint(s),
		Close:  EnsureAdminSession(MakeClosePollEndpoint(s)),
		List:   MakeListPollsEndpoint(s),
		Active: MakeActivePollEndpoint(s),
	}
}

// MakeCreatePollEndpoint returns an endpoint calling the Create method on the provided PollService
func MakeCreatePollEndpoint(s PollService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(createPollRequest)
		if !ok {
			return nil, fmt.Errorf("illegal poll creation request")
		}
		poll, err := s.Create(ctx, req.Question, req.Options)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, poll}, nil
	}
}

// MakeVoteEndpoint returns an endpoint calling the Vote method on the provided PollService
func MakeVoteEndpoint(s PollService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(voteRequest)
		if !ok {
			return nil, fmt.Errorf("illegal vote request")
		}
		poll, err := s.Vote(ctx, req.PollID, req.Option)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, poll}, nil
	}
}

// MakeClosePollEndpoint returns an endpoint calling the Close method on the provided PollService
func MakeClosePollEndpoint(s PollService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(string)
		if !ok {
			return nil, fmt.Errorf("illegal poll ID parameter")
		}
		poll, err := s.Close(ctx, id)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, poll}, nil
	}
}

// MakeListPollsEndpoint returns an endpoint calling the List method on the provided PollService
func MakeListPollsEndpoint(s PollService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		list, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, list}, nil
	}
}

// MakeActivePollEndpoint returns an endpoint calling the Active method on the provided PollService
func MakeActivePollEndpoint(s PollService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		poll, err := s.Active(ctx)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, poll}, nil
	}
}

// -- Analytics --------------------------------------------------------------------------------------------------------

// MakeAnalyticsEndpoints creates the endpoints needed for using the analytics service
func MakeAnalyticsEndpoints(s AnalyticsService) AnalyticsEndpoints {
	return AnalyticsEndpoints{
		Summary: EnsureAdminSession(MakeAnalyticsSummaryEndpoint(s)),
	}
}

// MakeAnalyticsSummaryEndpoint returns an endpoint calling the Summary method on the provided AnalyticsService
func MakeAnalyticsSummaryEndpoint(s AnalyticsService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		summary, err := s.Summary(ctx)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, summary}, nil
	}
}

// -- Sessions ---------------------------------------------------------------------------------------------------------

// MakeSessionEndpoints builds the endpoints needed to communicate with the Session Service
func MakeSessionEndpoints(s SessionService) SessionEndpoints {
	return SessionEndpoints{
		Login:  makeLoginEndpoint(s),
		Logout: makeLogoutEndpoint(s),
		WhoAmI: makeWhoAmIEndpoint(s),
	}
}

func makeLoginEndpoint(s SessionService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		se, ok := request.(loginRequest)
		if !ok {
			return nil, fmt.Errorf("illegal login request")
		}
		si, err := s.Login(ctx, se.PIN)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, si}, nil
	}
}

func makeLogoutEndpoint(s SessionService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(string)
		if !ok {
			return nil, fmt.Errorf("illegal session token")
		}
		err := s.Logout(ctx, id)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, nil}, nil
	}
}

func makeWhoAmIEndpoint(s SessionService) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(string)
		if !ok {
			return nil, fmt.Errorf("illegal session token")
		}
		si, err := s.WhoAmI(ctx, id)
		if err != nil {
			return nil, err
		}
		return basicResponse{true, si}, nil
	}
}
