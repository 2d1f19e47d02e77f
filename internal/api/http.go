package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"

	"github.com/akaliniv/tetatet/internal/auth"
	"github.com/akaliniv/tetatet/internal/logging"
	"github.com/akaliniv/tetatet/internal/models"
)

// HTTPClient implements Client over REST/JSON using resty.
type HTTPClient struct {
	rc    *resty.Client
	creds *auth.Credentials
	log   logging.Logger

	// refreshGroup collapses concurrent 401s into one refresh call instead
	// of letting each failed call race its own refresh.
	refreshGroup singleflight.Group
}

var _ Client = (*HTTPClient)(nil)

// New builds an HTTPClient against baseURL. The credential holder is injected;
// the transport reads the current token from it on every attempt and is the
// only writer besides the session service.
func New(baseURL string, timeout time.Duration, creds *auth.Credentials, log logging.Logger) *HTTPClient {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &HTTPClient{rc: rc, creds: creds, log: log}
}

// errorBody is the server's error envelope: {message, errors?: {field: [...]}}.
type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// prepFunc customizes one request attempt (body, form fields, files).
// It runs once per attempt so a retry gets a fresh request with the new token.
type prepFunc func(req *resty.Request) *resty.Request

// attempt executes a single request with the current bearer token attached.
func (c *HTTPClient) attempt(ctx context.Context, method, path string, prep prepFunc, out any) (*resty.Response, error) {
	req := c.rc.R().SetContext(ctx)
	if token, ok := c.creds.Get(); ok {
		req.SetAuthToken(token)
	}
	if prep != nil {
		req = prep(req)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

// do runs an authenticated call with the refresh protocol: on a 401 for a
// call that has not yet been retried, perform exactly one token refresh and
// retry once with the new token. The retried call never triggers a second
// refresh; if the refresh fails or yields no usable token, the credentials
// are cleared and the original authorization error is surfaced.
func (c *HTTPClient) do(ctx context.Context, method, path string, prep prepFunc, out any) error {
	resp, err := c.attempt(ctx, method, path, prep, out)
	if err != nil {
		return err
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		if rerr := c.refreshAccessToken(ctx); rerr != nil {
			c.creds.Clear()
			c.log.Warn(ctx, "token refresh failed", "path", path, "error", rerr)
			return fmt.Errorf("%w: %s", ErrUnauthorized, c.failureMessage(resp))
		}
		resp, err = c.attempt(ctx, method, path, prep, out)
		if err != nil {
			return err
		}
	}

	return c.mapResponse(resp)
}

// refreshAccessToken calls the refresh endpoint and stores the new token.
// Concurrent callers share one in-flight refresh.
func (c *HTTPClient) refreshAccessToken(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		var pair models.TokenPair
		resp, err := c.attempt(ctx, resty.MethodPost, "/auth/refresh", nil, &pair)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, c.mapResponse(resp)
		}
		token := pair.Token()
		if token == "" {
			return nil, fmt.Errorf("refresh returned no usable token")
		}
		c.creds.Set(token)
		return nil, nil
	})
	return err
}

// mapResponse translates an HTTP status into the error taxonomy.
func (c *HTTPClient) mapResponse(resp *resty.Response) error {
	code := resp.StatusCode()
	switch {
	case code < 400:
		return nil
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, c.failureMessage(resp))
	case code == http.StatusNotFound:
		return ErrNotFound
	case code < 500:
		body := c.parseErrorBody(resp)
		return &ValidationError{Message: body.Message, Fields: body.Errors}
	default:
		body := c.parseErrorBody(resp)
		return &ServerError{Status: code, Message: body.Message}
	}
}

func (c *HTTPClient) parseErrorBody(resp *resty.Response) errorBody {
	var body errorBody
	_ = json.Unmarshal(resp.Body(), &body)
	return body
}

func (c *HTTPClient) failureMessage(resp *resty.Response) string {
	if msg := c.parseErrorBody(resp).Message; msg != "" {
		return msg
	}
	return resp.Status()
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (models.TokenPair, error) {
	var pair models.TokenPair
	resp, err := c.attempt(ctx, resty.MethodPost, "/auth/login", func(req *resty.Request) *resty.Request {
		return req.SetBody(map[string]string{"username": username, "password": password})
	}, &pair)
	if err != nil {
		return models.TokenPair{}, err
	}
	if err := c.mapResponse(resp); err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (models.TokenPair, error) {
	var pair models.TokenPair
	resp, err := c.attempt(ctx, resty.MethodPost, "/auth/register", func(req *resty.Request) *resty.Request {
		return req.SetBody(map[string]string{"username": username, "email": email, "password": password})
	}, &pair)
	if err != nil {
		return models.TokenPair{}, err
	}
	if err := c.mapResponse(resp); err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

func (c *HTTPClient) Me(ctx context.Context) (models.User, error) {
	var user models.User
	if err := c.do(ctx, resty.MethodGet, "/auth/me", nil, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (c *HTTPClient) Friends(ctx context.Context) ([]models.Friend, error) {
	var friends []models.Friend
	if err := c.do(ctx, resty.MethodGet, "/friends", nil, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

func (c *HTTPClient) PendingRequests(ctx context.Context) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	if err := c.do(ctx, resty.MethodGet, "/friends/pending", nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (c *HTTPClient) OutgoingRequests(ctx context.Context) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	if err := c.do(ctx, resty.MethodGet, "/friends/outgoing", nil, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (c *HTTPClient) SendFriendRequest(ctx context.Context, userID int64) error {
	return c.do(ctx, resty.MethodPost, "/friends/"+strconv.FormatInt(userID, 10), nil, nil)
}

func (c *HTTPClient) AcceptFriendRequest(ctx context.Context, friendshipID int64) error {
	return c.do(ctx, resty.MethodPost, "/friends/"+strconv.FormatInt(friendshipID, 10)+"/accept", nil, nil)
}

func (c *HTTPClient) RemoveFriendship(ctx context.Context, friendshipID int64) error {
	return c.do(ctx, resty.MethodDelete, "/friends/"+strconv.FormatInt(friendshipID, 10), nil, nil)
}

func (c *HTTPClient) Conversations(ctx context.Context) ([]models.Conversation, error) {
	var convs []models.Conversation
	if err := c.do(ctx, resty.MethodGet, "/conversations", nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (c *HTTPClient) Messages(ctx context.Context, conversationID int64, page int) ([]models.Message, error) {
	var msgs []models.Message
	path := "/conversations/" + strconv.FormatInt(conversationID, 10) + "/messages"
	err := c.do(ctx, resty.MethodGet, path, func(req *resty.Request) *resty.Request {
		return req.SetQueryParam("page", strconv.Itoa(page))
	}, &msgs)
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage posts a draft as JSON, or as multipart form data when the draft
// carries an attachment.
func (c *HTTPClient) SendMessage(ctx context.Context, conversationID int64, draft models.MessageDraft) (models.Message, error) {
	var msg models.Message
	path := "/conversations/" + strconv.FormatInt(conversationID, 10) + "/messages"
	err := c.do(ctx, resty.MethodPost, path, func(req *resty.Request) *resty.Request {
		if draft.AttachmentPath == "" {
			return req.SetBody(draft)
		}
		fields := map[string]string{"content": draft.Content}
		if draft.TTLSeconds > 0 {
			fields["ttl_seconds"] = strconv.Itoa(draft.TTLSeconds)
		}
		return req.SetFile("attachment", draft.AttachmentPath).SetFormData(fields)
	}, &msg)
	if err != nil {
		return models.Message{}, err
	}
	return msg, nil
}

func (c *HTTPClient) DeleteMessage(ctx context.Context, conversationID int64, messageID string) error {
	path := "/conversations/" + strconv.FormatInt(conversationID, 10) + "/messages/" + messageID
	return c.do(ctx, resty.MethodDelete, path, nil, nil)
}

func (c *HTTPClient) UploadProfilePicture(ctx context.Context, path string) (models.User, error) {
	var user models.User
	err := c.do(ctx, resty.MethodPost, "/profile/picture", func(req *resty.Request) *resty.Request {
		return req.SetFile("picture", path)
	}, &user)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (c *HTTPClient) DeleteProfilePicture(ctx context.Context) error {
	return c.do(ctx, resty.MethodDelete, "/profile/picture", nil, nil)
}
