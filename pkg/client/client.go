// Package client 是 CULfs HTTP API 的类型化客户端。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const DefaultTimeout = 15 * time.Second

type Client struct {
	base string
	hc   *http.Client

	mu   sync.RWMutex
	sess *Session
}

type Option func(*Client)

// WithHTTPClient 以 hc 的副本作为底层客户端，之后的设置不影响 hc 本身；nil 忽略
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		cp := *hc
		c.hc = &cp
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

// New baseURL 形如 http://host:8080（不含 /api）
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	if c.hc.Timeout <= 0 {
		c.hc.Timeout = DefaultTimeout
	}
	return c
}

// Session 当前会话；未登录返回 nil
func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sess
}

// SetSession 恢复之前保存的会话
func (c *Client) SetSession(s *Session) {
	c.mu.Lock()
	c.sess = s
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sess == nil {
		return ""
	}
	return c.sess.Token
}

type envelope struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

// call 发送请求并解析统一响应；out 为 nil 时只检查 success
func (c *Client) call(ctx context.Context, method, path string, q url.Values, in, out any) error {
	u := c.base + "/api" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrNetwork, path, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %s %s: status %d, undecodable body", ErrNetwork, method, path, res.StatusCode)
	}
	if !env.Success {
		if env.Code == 0 && env.Message == "" {
			return fmt.Errorf("%w: %s %s: status %d, empty envelope", ErrNetwork, method, path, res.StatusCode)
		}
		return &APIError{Code: env.Code, Reason: env.Reason, Message: env.Message}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrNetwork, path, err)
		}
	}
	return nil
}

func esc(s string) string { return url.PathEscape(s) }

func pageQuery(o ListOptions) url.Values {
	q := url.Values{}
	if o.Status != "" {
		q.Set("status", o.Status)
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Size > 0 {
		q.Set("size", strconv.Itoa(o.Size))
	}
	return q
}

func limitQuery(n int) url.Values {
	if n <= 0 {
		return nil
	}
	return url.Values{"limit": {strconv.Itoa(n)}}
}

// ---- 身份 ----

// Login 成功后客户端持有令牌
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var out struct {
		User      User      `json:"user"`
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := c.call(ctx, http.MethodPost, "/login", nil, in, &out); err != nil {
		return nil, err
	}
	s := &Session{Token: out.Token, ExpiresAt: out.ExpiresAt, User: out.User}
	c.SetSession(s)
	return s, nil
}

// Logout 无论服务端结果如何都清除本地会话
func (c *Client) Logout(ctx context.Context) error {
	err := c.call(ctx, http.MethodPost, "/logout", nil, nil, nil)
	c.SetSession(nil)
	return err
}

// Register 返回新用户 ID
func (c *Client) Register(ctx context.Context, in RegisterRequest) (string, error) {
	var out struct {
		UserID string `json:"user_id"`
	}
	if err := c.call(ctx, http.MethodPost, "/register", nil, in, &out); err != nil {
		return "", err
	}
	return out.UserID, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.call(ctx, http.MethodGet, "/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ---- 失物 ----

type lostItemOut struct {
	Item LostItem `json:"item"`
}

type lostItemsOut struct {
	Items []LostItem `json:"items"`
	Total int64      `json:"total"`
}

func (c *Client) ReportLostItem(ctx context.Context, in ReportRequest) (*LostItem, error) {
	var out lostItemOut
	if err := c.call(ctx, http.MethodPost, "/report-lost-item", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

func (c *Client) ListLostItems(ctx context.Context, userID string) ([]LostItem, error) {
	var out lostItemsOut
	if err := c.call(ctx, http.MethodGet, "/lost-items/"+esc(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) GetLostItem(ctx context.Context, caseNumber string) (*LostItem, error) {
	var out lostItemOut
	if err := c.call(ctx, http.MethodGet, "/lost-items/case/"+esc(caseNumber), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

// MatchForCase 尚无有效关联时返回 ErrNotFound
func (c *Client) MatchForCase(ctx context.Context, caseNumber string) (*Match, error) {
	var out struct {
		Match *Match `json:"match"`
	}
	if err := c.call(ctx, http.MethodGet, "/lost-items/case/"+esc(caseNumber)+"/match", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Match, nil
}

func (c *Client) MarkAsFound(ctx context.Context, caseNumber string) (*LostItem, error) {
	return c.lostAction(ctx, caseNumber, "mark-found")
}

func (c *Client) ArchiveLostItem(ctx context.Context, caseNumber string) (*LostItem, error) {
	return c.lostAction(ctx, caseNumber, "archive")
}

func (c *Client) lostAction(ctx context.Context, caseNumber, action string) (*LostItem, error) {
	var out lostItemOut
	if err := c.call(ctx, http.MethodPost, "/lost-items/"+esc(caseNumber)+"/"+action, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

// NotifyReporter typ 为空时服务端按 Admin_Contact 处理
func (c *Client) NotifyReporter(ctx context.Context, caseNumber, message, typ string) (*Notification, error) {
	var out struct {
		Notification Notification `json:"notification"`
	}
	in := map[string]string{"message": message, "type": typ}
	if err := c.call(ctx, http.MethodPost, "/lost-items/"+esc(caseNumber)+"/notify", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Notification, nil
}

func (c *Client) DeleteLostItem(ctx context.Context, caseNumber string) error {
	err := c.call(ctx, http.MethodDelete, "/lost-items/"+esc(caseNumber), nil, nil, nil)
	return err
}

// ---- 招领 ----

type foundItemOut struct {
	Item FoundItem `json:"item"`
}

func (c *Client) LogFoundItem(ctx context.Context, in LogFoundRequest) (*FoundItem, error) {
	var out foundItemOut
	if err := c.call(ctx, http.MethodPost, "/log-found-item", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

func (c *Client) GetFoundItem(ctx context.Context, id string) (*FoundItem, error) {
	var out foundItemOut
	if err := c.call(ctx, http.MethodGet, "/found-items/"+esc(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

// Candidates limit<=0 使用服务端默认值
func (c *Client) Candidates(ctx context.Context, foundItemID string, limit int) ([]Candidate, error) {
	var out struct {
		Candidates []Candidate `json:"candidates"`
	}
	if err := c.call(ctx, http.MethodGet, "/found-items/"+esc(foundItemID)+"/candidates", limitQuery(limit), nil, &out); err != nil {
		return nil, err
	}
	return out.Candidates, nil
}

func (c *Client) MatchForFoundItem(ctx context.Context, foundItemID string) (*Match, error) {
	var out struct {
		Match *Match `json:"match"`
	}
	if err := c.call(ctx, http.MethodGet, "/found-items/"+esc(foundItemID)+"/match", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Match, nil
}

func (c *Client) MatchWithCase(ctx context.Context, foundItemID, caseNumber string) (*Match, error) {
	var out struct {
		Match *Match `json:"match"`
	}
	in := map[string]string{"caseNumber": caseNumber}
	if err := c.call(ctx, http.MethodPost, "/found-items/"+esc(foundItemID)+"/match", nil, in, &out); err != nil {
		return nil, err
	}
	return out.Match, nil
}

func (c *Client) Unmatch(ctx context.Context, foundItemID string) (*FoundItem, error) {
	return c.foundAction(ctx, foundItemID, "unmatch", nil)
}

func (c *Client) MarkAsClaimed(ctx context.Context, foundItemID string) (*FoundItem, error) {
	return c.foundAction(ctx, foundItemID, "mark-claimed", nil)
}

func (c *Client) MarkAsUnclaimed(ctx context.Context, foundItemID string) (*FoundItem, error) {
	return c.foundAction(ctx, foundItemID, "mark-unclaimed", nil)
}

func (c *Client) ArchiveFoundItem(ctx context.Context, foundItemID, disposition string) (*FoundItem, error) {
	return c.foundAction(ctx, foundItemID, "archive", map[string]string{"disposition": disposition})
}

func (c *Client) foundAction(ctx context.Context, id, action string, in any) (*FoundItem, error) {
	var out foundItemOut
	if err := c.call(ctx, http.MethodPost, "/found-items/"+esc(id)+"/"+action, nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Item, nil
}

// ---- 通知 ----

func (c *Client) Notifications(ctx context.Context, userID string, limit int) ([]Notification, error) {
	var out struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := c.call(ctx, http.MethodGet, "/notifications/"+esc(userID), limitQuery(limit), nil, &out); err != nil {
		return nil, err
	}
	return out.Notifications, nil
}

// ---- 管理端 ----

func (c *Client) AllLostItems(ctx context.Context, o ListOptions) ([]LostItem, int64, error) {
	var out lostItemsOut
	if err := c.call(ctx, http.MethodGet, "/admin/lost-items", pageQuery(o), nil, &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}

func (c *Client) AllFoundItems(ctx context.Context, o ListOptions) ([]FoundItem, int64, error) {
	var out struct {
		Items []FoundItem `json:"items"`
		Total int64       `json:"total"`
	}
	if err := c.call(ctx, http.MethodGet, "/admin/found-items", pageQuery(o), nil, &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out struct {
		Stats Stats `json:"stats"`
	}
	if err := c.call(ctx, http.MethodGet, "/admin/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Stats, nil
}

func (c *Client) Offices(ctx context.Context) ([]Office, error) {
	var out struct {
		Items []Office `json:"items"`
	}
	if err := c.call(ctx, http.MethodGet, "/admin/offices", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Users 按邮箱/姓名模糊搜索，role 可为空
func (c *Client) Users(ctx context.Context, q, role string, offset, limit int) ([]User, int64, error) {
	v := url.Values{}
	if q != "" {
		v.Set("q", q)
	}
	if role != "" {
		v.Set("role", role)
	}
	if offset > 0 {
		v.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var out struct {
		Items []User `json:"items"`
		Total int64  `json:"total"`
	}
	if err := c.call(ctx, http.MethodGet, "/admin/users", v, nil, &out); err != nil {
		return nil, 0, err
	}
	return out.Items, out.Total, nil
}
