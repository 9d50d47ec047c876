package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"neighborhood/backend/internal/config"
)

// kakaoUser is the subset of /v2/user/me we read.
type kakaoUser struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
	Properties struct {
		Nickname string `json:"nickname"`
	} `json:"properties"`
}

func (u kakaoUser) UID() string { return "kakao:" + strconv.FormatInt(u.ID, 10) }

func (u kakaoUser) Nickname() string {
	if n := strings.TrimSpace(u.KakaoAccount.Profile.Nickname); n != "" {
		return n
	}
	return strings.TrimSpace(u.Properties.Nickname)
}

// Kakao exchanges authorization codes and reads the signed-in user.
type Kakao struct {
	oauth       *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

func NewKakao(cfg config.KakaoConfig, httpClient *http.Client) *Kakao {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Kakao{
		oauth: &oauth2.Config{
			ClientID:     cfg.RestAPIKey,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		httpClient:  httpClient,
	}
}

// User runs the code exchange and returns the Kakao account behind it.
func (k *Kakao) User(ctx context.Context, code string) (*kakaoUser, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, k.httpClient)
	tok, err := k.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := k.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("user info: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var u kakaoUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("user info: decode: %w", err)
	}
	if u.ID == 0 {
		return nil, fmt.Errorf("user info: missing id")
	}
	return &u, nil
}
