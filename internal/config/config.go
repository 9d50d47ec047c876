package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectID                    string
	Port                         string
	AllowedOrigins               []string
	StorageBucket                string
	SignedURLServiceAccountEmail string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TimeZone is applied to meeting times entered without an offset.
	TimeZone string

	Kakao KakaoConfig
}

type KakaoConfig struct {
	RestAPIKey   string
	ClientSecret string
	RedirectURI  string
	TokenURL     string
	UserInfoURL  string
}

func (k KakaoConfig) Enabled() bool { return k.RestAPIKey != "" }

func Load() Config {
	// .env is optional; real environment always wins
	_ = godotenv.Load()

	// FIREBASE_PROJECT_ID または GOOGLE_CLOUD_PROJECT を読む
	projectID := getenv("FIREBASE_PROJECT_ID", "")
	if projectID == "" {
		projectID = getenv("GOOGLE_CLOUD_PROJECT", "")
	}

	storageBucket := getenv("FIREBASE_STORAGE_BUCKET", "")
	if storageBucket == "" && projectID != "" {
		storageBucket = projectID + ".appspot.com"
	}

	redisDB, err := strconv.Atoi(getenv("REDIS_DB", "0"))
	if err != nil || redisDB < 0 {
		redisDB = 0
	}

	return Config{
		ProjectID:                    projectID,
		Port:                         getenv("PORT", "8080"),
		AllowedOrigins:               splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000")),
		StorageBucket:                storageBucket,
		SignedURLServiceAccountEmail: getenv("SIGNED_URL_SERVICE_ACCOUNT_EMAIL", ""),
		RedisAddr:                    getenv("REDIS_ADDR", ""),
		RedisPassword:                getenv("REDIS_PASSWORD", ""),
		RedisDB:                      redisDB,
		TimeZone:                     getenv("TIME_ZONE", "Asia/Seoul"),
		Kakao: KakaoConfig{
			RestAPIKey:   getenv("KAKAO_REST_API_KEY", ""),
			ClientSecret: getenv("KAKAO_CLIENT_SECRET", ""),
			RedirectURI:  getenv("KAKAO_REDIRECT_URI", ""),
			TokenURL:     getenv("KAKAO_TOKEN_URL", "https://kauth.kakao.com/oauth/token"),
			UserInfoURL:  getenv("KAKAO_USERINFO_URL", "https://kapi.kakao.com/v2/user/me"),
		},
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
