package backend

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/f559/auto-novel/internal/apperrors"
	"github.com/f559/auto-novel/internal/chunker"
	"github.com/f559/auto-novel/internal/glossary"
	"github.com/f559/auto-novel/internal/httpclient"
	"github.com/f559/auto-novel/internal/language"
)

const (
	youdaoBaseURL     = "https://dict.youdao.com"
	youdaoBatchBudget = 2000

	// Constants baked into the Youdao web client. The initial sign key
	// only unlocks the key-exchange call; the real signing key comes back
	// from /webtranslate/key during warmup.
	youdaoProduct    = "webfanyi"
	youdaoClientID   = "fanyideskweb"
	youdaoKeyDefault = "fsdsogkndfokasodnaso"
	youdaoAESKeySeed = "ydsecret://query/key/B*RGygVywfNBwpmBaZg*WT7SIOUP2T0C9WHMZN39j^DAdaZhAnxvGcCY6VYFwnHl"
	youdaoAESIVSeed  = "ydsecret://query/iv/C@lZe2YzHtZ2CYgaXKSVfsb7Y4QWHjITPPZ0nQp87fBeJ!Iv6v^6fvi2WN@bYpJ4"
)

type youdaoClient struct {
	http      *http.Client
	secretKey string
	glossary  glossary.Glossary
	limiter   *rate.Limiter
	logf      LogFunc
}

type youdaoKeyResponse struct {
	Code int `json:"code"`
	Data struct {
		SecretKey string `json:"secretKey"`
	} `json:"data"`
}

type youdaoTranslateResponse struct {
	TranslateResult [][]struct {
		Src string `json:"src"`
		Tgt string `json:"tgt"`
	} `json:"translateResult"`
}

// newYoudao performs the key exchange that every later translate call signs
// with. A rejected or unreachable exchange fails the job up front.
func newYoudao(bc buildContext) (Translator, error) {
	client, err := httpclient.NewCookieClient(httpclient.DefaultTimeout)
	if err != nil {
		return nil, err
	}
	c := &youdaoClient{
		http:     client,
		glossary: bc.glossary,
		limiter:  rate.NewLimiter(rate.Limit(1), 1),
		logf:     bc.logf,
	}
	if err := c.fetchSecretKey(bc.ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func youdaoSign(mysticTime, key string) string {
	payload := fmt.Sprintf("client=%s&mysticTime=%s&product=%s&key=%s",
		youdaoClientID, mysticTime, youdaoProduct, key)
	sum := md5.Sum([]byte(payload))
	return fmt.Sprintf("%x", sum)
}

func youdaoBaseParams(key string) url.Values {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	params := url.Values{}
	params.Set("client", youdaoClientID)
	params.Set("product", youdaoProduct)
	params.Set("appVersion", "1.0.0")
	params.Set("vendor", "web")
	params.Set("pointParam", "client,mysticTime,product")
	params.Set("mysticTime", now)
	params.Set("keyfrom", "fanyi.web")
	params.Set("sign", youdaoSign(now, key))
	return params
}

func (c *youdaoClient) fetchSecretKey(ctx context.Context) error {
	params := youdaoBaseParams(youdaoKeyDefault)
	params.Set("keyid", "webfanyi-key-getter")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		youdaoBaseURL+"/webtranslate/key?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create key request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	body, resp, err := httpclient.DoAndRead(c.http, req)
	if err != nil {
		return apperrors.New(
			apperrors.KindTransient,
			"Youdao translate is unreachable.",
			fmt.Errorf("key exchange failed: %w", err),
		)
	}
	if resp.StatusCode != http.StatusOK {
		return apperrors.New(
			apperrors.KindTransient,
			fmt.Sprintf("Youdao key exchange failed (%d).", resp.StatusCode),
			fmt.Errorf("youdao status=%s", resp.Status),
		)
	}
	var decoded youdaoKeyResponse
	if err := json.Unmarshal(body, &decoded); err != nil || decoded.Code != 0 || decoded.Data.SecretKey == "" {
		return apperrors.New(
			apperrors.KindValidation,
			"Youdao key exchange returned an unexpected response.",
			fmt.Errorf("failed to decode key response: %v", err),
		)
	}
	c.secretKey = decoded.Data.SecretKey
	return nil
}

func (c *youdaoClient) Translate(ctx context.Context, texts []string) ([]string, error) {
	nonBlank, restore := partitionBlank(texts)
	if len(nonBlank) == 0 {
		return texts, nil
	}
	encoded := c.glossary.Encode(nonBlank)

	var translated []string
	for _, batch := range chunker.SplitBudget(encoded, youdaoBatchBudget) {
		out, err := c.translateBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		translated = append(translated, out...)
	}
	return restore(c.glossary.Decode(translated)), nil
}

func (c *youdaoClient) translateBatch(ctx context.Context, texts []string) ([]string, error) {
	var result []string
	err := withRetry(ctx, defaultMaxAttempts, c.logf, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		out, err := c.call(ctx, texts)
		if err != nil {
			return err
		}
		if len(out) != len(texts) {
			return apperrors.Validation(
				fmt.Errorf("translation count mismatch: expected %d, got %d", len(texts), len(out)))
		}
		result = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *youdaoClient) call(ctx context.Context, texts []string) ([]string, error) {
	pair := language.PairFor("youdao")
	params := youdaoBaseParams(c.secretKey)
	params.Set("i", strings.Join(texts, "\n"))
	params.Set("from", pair.Source)
	params.Set("to", pair.Target)
	params.Set("dictResult", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		youdaoBaseURL+"/webtranslate", strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Referer", "https://fanyi.youdao.com/")

	body, resp, err := httpclient.DoAndRead(c.http, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.New(
			apperrors.KindTransient,
			"Youdao request failed due to a temporary network error.",
			fmt.Errorf("request failed: %w", err),
		)
	}
	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, apperrors.New(
				apperrors.KindRateLimit,
				"Youdao rate limit exceeded: please try again later.",
				fmt.Errorf("youdao status=%s", resp.Status),
			)
		}
		return nil, apperrors.New(
			apperrors.KindTransient,
			fmt.Sprintf("Youdao translate error (%d).", resp.StatusCode),
			fmt.Errorf("youdao status=%s", resp.Status),
		)
	}

	plaintext, err := youdaoDecrypt(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, apperrors.New(
			apperrors.KindValidation,
			"Youdao response could not be decrypted.",
			err,
		)
	}
	var decoded youdaoTranslateResponse
	if err := json.Unmarshal(plaintext, &decoded); err != nil {
		return nil, apperrors.New(
			apperrors.KindValidation,
			"Youdao response format was invalid.",
			fmt.Errorf("failed to decode response: %w", err),
		)
	}

	out := make([]string, 0, len(decoded.TranslateResult))
	for _, line := range decoded.TranslateResult {
		var b strings.Builder
		for _, seg := range line {
			b.WriteString(seg.Tgt)
		}
		out = append(out, b.String())
	}
	return out, nil
}

// youdaoDecrypt reverses the AES-128-CBC layer around translate responses.
// Key and IV derive from fixed seeds the web client ships with.
func youdaoDecrypt(encoded string) ([]byte, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("response is not base64: %w", err)
	}
	key := md5.Sum([]byte(youdaoAESKeySeed))
	iv := md5.Sum([]byte(youdaoAESIVSeed))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext length %d is not a multiple of the block size", len(ciphertext))
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv[:]).CryptBlocks(plaintext, ciphertext)

	// PKCS#7 padding.
	pad := int(plaintext[len(plaintext)-1])
	if pad < 1 || pad > aes.BlockSize || pad > len(plaintext) {
		return nil, fmt.Errorf("invalid padding")
	}
	return plaintext[:len(plaintext)-pad], nil
}
