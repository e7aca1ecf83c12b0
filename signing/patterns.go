package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/ccxtgo/unified/errs"
	"github.com/ccxtgo/unified/spec"
)

// requireCredentialField returns an invalid_credentials *errs.Error when a
// required field is blank, nil otherwise.
func requireCredentialField(value, fieldName string) *errs.Error {
	if value == "" {
		return errs.New(errs.TypeInvalidCredentials, "", "missing required credential: "+fieldName, nil)
	}
	return nil
}

func encode(sig []byte, enc spec.SignatureEncoding) string {
	switch enc {
	case spec.EncodingBase64:
		return base64.StdEncoding.EncodeToString(sig)
	default: // EncodingHex, and "" defaults to hex
		return hex.EncodeToString(sig)
	}
}

// signHMACSHA256Query implements the Binance-style query-signed pattern:
// sort params, URL-encode, append timestamp (+recv_window), HMAC-SHA256,
// append signature=hex, API key in a header.
func signHMACSHA256Query(req Request, creds Credentials, cfg spec.Signing, deps Deps) (*SignedRequest, error) {
	if err := requireCredentialField(creds.APIKey, "api_key"); err != nil {
		return nil, err
	}
	if err := requireCredentialField(creds.Secret, "secret"); err != nil {
		return nil, err
	}

	ts, terr := formatTimestamp(deps.Now(), cfg.TimestampFormat)
	if terr != nil {
		return nil, terr
	}

	params := cloneParams(req.Params)
	params["timestamp"] = ts
	if cfg.RecvWindowMS > 0 {
		params["recvWindow"] = cfg.RecvWindowMS
	}

	query := sortedQueryString(params)
	mac := hmac.New(sha256.New, []byte(creds.Secret))
	mac.Write([]byte(query))
	signature := encode(mac.Sum(nil), spec.EncodingHex)

	fullQuery := query + "&signature=" + signature
	apiKeyHeader := apiKeyHeaderOr(cfg, "X-MBX-APIKEY")

	return &SignedRequest{
		URL:    req.BaseURL + req.Path + "?" + fullQuery,
		Method: req.Method,
		Headers: []Header{
			{Name: apiKeyHeader, Value: creds.APIKey},
		},
		Body: req.Body,
	}, nil
}

// signHMACSHA256Headers implements the header-signed pattern: timestamp
// (ms), HMAC-SHA256(secret, timestamp+api_key+recv_window+body) hex, set
// configured headers. Body untouched.
func signHMACSHA256Headers(req Request, creds Credentials, cfg spec.Signing, deps Deps) (*SignedRequest, error) {
	if err := requireCredentialField(creds.APIKey, "api_key"); err != nil {
		return nil, err
	}
	if err := requireCredentialField(creds.Secret, "secret"); err != nil {
		return nil, err
	}

	ts, terr := formatTimestamp(deps.Now(), spec.TimestampMillis)
	if terr != nil {
		return nil, terr
	}

	recvWindow := ""
	if cfg.RecvWindowMS > 0 {
		recvWindow = fmt.Sprintf("%d", cfg.RecvWindowMS)
	}

	payload := ts + creds.APIKey + recvWindow + string(req.Body)
	mac := hmac.New(sha256.New, []byte(creds.Secret))
	mac.Write([]byte(payload))
	signature := encode(mac.Sum(nil), spec.EncodingHex)

	headers := []Header{
		{Name: apiKeyHeaderOr(cfg, "X-API-KEY"), Value: creds.APIKey},
		{Name: headerOr(cfg.TimestampHeader, "X-TIMESTAMP"), Value: ts},
		{Name: headerOr(cfg.SignatureHeader, "X-SIGNATURE"), Value: signature},
	}
	if recvWindow != "" {
		headers = append(headers, Header{Name: headerOr(cfg.RecvWindowHeader, "X-RECV-WINDOW"), Value: recvWindow})
	}

	return &SignedRequest{
		URL:     req.BaseURL + req.Path,
		Method:  req.Method,
		Headers: headers,
		Body:    req.Body,
	}, nil
}

// signHMACSHA256ISOPassphrase implements the Coinbase/OKX-style pattern:
// ISO-8601 ms timestamp with Z, HMAC-SHA256(secret, timestamp+METHOD+path+body)
// base64, headers for key/timestamp/signature/passphrase.
func signHMACSHA256ISOPassphrase(req Request, creds Credentials, cfg spec.Signing, deps Deps) (*SignedRequest, error) {
	if err := requireCredentialField(creds.APIKey, "api_key"); err != nil {
		return nil, err
	}
	if err := requireCredentialField(creds.Secret, "secret"); err != nil {
		return nil, err
	}
	if err := requireCredentialField(creds.Password, "password"); err != nil {
		return nil, err
	}

	ts, terr := formatTimestamp(deps.Now(), spec.TimestampISO8601)
	if terr != nil {
		return nil, terr
	}

	payload := ts + string(req.Method) + req.Path + string(req.Body)
	mac := hmac.New(sha256.New, []byte(creds.Secret))
	mac.Write([]byte(payload))
	signature := encode(mac.Sum(nil), spec.EncodingBase64)

	return &SignedRequest{
		URL:    req.BaseURL + req.Path,
		Method: req.Method,
		Headers: []Header{
			{Name: apiKeyHeaderOr(cfg, "CB-ACCESS-KEY"), Value: creds.APIKey},
			{Name: headerOr(cfg.TimestampHeader, "CB-ACCESS-TIMESTAMP"), Value: ts},
			{Name: headerOr(cfg.SignatureHeader, "CB-ACCESS-SIGN"), Value: signature},
			{Name: headerOr(cfg.PassphraseHeader, "CB-ACCESS-PASSPHRASE"), Value: creds.Password},
		},
		Body: req.Body,
	}, nil
}

// signHMACSHA256PassphraseSigned is as signHMACSHA256ISOPassphrase, but the
// passphrase header value is itself HMAC-SHA256(secret, passphrase)
// (KuCoin-style).
func signHMACSHA256PassphraseSigned(req Request, creds Credentials, cfg spec.Signing, deps Deps) (*SignedRequest, error) {
	signed, err := signHMACSHA256ISOPassphrase(req, creds, cfg, deps)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, []byte(creds.Secret))
	mac.Write([]byte(creds.Password))
	signedPassphrase := encode(mac.Sum(nil), spec.EncodingBase64)

	passphraseHeader := headerOr(cfg.PassphraseHeader, "CB-ACCESS-PASSPHRASE")
	for i := range signed.Headers {
		if signed.Headers[i].Name == passphraseHeader {
			signed.Headers[i].Value = signedPassphrase
		}
	}
	return signed, nil
}

// signHMACSHA512Nonce implements the Kraken-style pattern: nonce in body,
// HMAC-SHA512(base64-decoded secret, path + SHA256(nonce+body)) base64.
func signHMACSHA512Nonce(req Request, creds Credentials, cfg spec.Signing, deps Deps) (*SignedRequest, error) {
	if err := requireCredentialField(creds.APIKey, "api_key"); err != nil {
		return nil, err
	}
	if err := requireCredentialField(creds.Secret, "secret"); err != nil {
		return nil, err
	}

	decodedSecret, decErr := base64.StdEncoding.DecodeString(creds.Secret)
	if decErr != nil {
		return nil, errs.New(errs.TypeInvalidCredentials, "", "secret is not valid base64", decErr)
	}

	nonce := deps.Nonce()
	params := cloneParams(req.Params)
	params["nonce"] = nonce
	body := []byte(sortedQueryString(params))

	inner := sha256.Sum256(append([]byte(nonce), body...))
	mac := hmac.New(sha512.New, decodedSecret)
	mac.Write([]byte(req.Path))
	mac.Write(inner[:])
	signature := encode(mac.Sum(nil), spec.EncodingBase64)

	return &SignedRequest{
		URL:    req.BaseURL + req.Path,
		Method: req.Method,
		Headers: []Header{
			{Name: apiKeyHeaderOr(cfg, "API-Key"), Value: creds.APIKey},
			{Name: headerOr(cfg.SignatureHeader, "API-Sign"), Value: signature},
		},
		Body: body,
	}, nil
}

// signHMACSHA512Gate implements the Gate.io-style pattern:
// HMAC-SHA512(secret, METHOD\nPATH\nQUERY\nSHA512(body)\nTIMESTAMP) hex.
func signHMACSHA512Gate(req Request, creds Credentials, cfg spec.Signing, deps Deps) (*SignedRequest, error) {
	if err := requireCredentialField(creds.APIKey, "api_key"); err != nil {
		return nil, err
	}
	if err := requireCredentialField(creds.Secret, "secret"); err != nil {
		return nil, err
	}

	ts, terr := formatTimestamp(deps.Now(), spec.TimestampSeconds)
	if terr != nil {
		return nil, terr
	}

	query := sortedQueryString(req.Params)
	bodyHash := sha512.Sum512(req.Body)
	payload := string(req.Method) + "\n" + req.Path + "\n" + query + "\n" + hex.EncodeToString(bodyHash[:]) + "\n" + ts

	mac := hmac.New(sha512.New, []byte(creds.Secret))
	mac.Write([]byte(payload))
	signature := encode(mac.Sum(nil), spec.EncodingHex)

	url := req.BaseURL + req.Path
	if query != "" {
		url += "?" + query
	}

	return &SignedRequest{
		URL:    url,
		Method: req.Method,
		Headers: []Header{
			{Name: apiKeyHeaderOr(cfg, "KEY"), Value: creds.APIKey},
			{Name: headerOr(cfg.SignatureHeader, "SIGN"), Value: signature},
			{Name: headerOr(cfg.TimestampHeader, "Timestamp"), Value: ts},
		},
		Body: req.Body,
	}, nil
}

// signHMACSHA384Payload implements the Poloniex-style pattern:
// HMAC-SHA384(secret, "/api/"+path+nonce+body) hex.
func signHMACSHA384Payload(req Request, creds Credentials, cfg spec.Signing, deps Deps) (*SignedRequest, error) {
	if err := requireCredentialField(creds.APIKey, "api_key"); err != nil {
		return nil, err
	}
	if err := requireCredentialField(creds.Secret, "secret"); err != nil {
		return nil, err
	}

	nonce := deps.Nonce()
	payload := "/api/" + req.Path + nonce + string(req.Body)

	mac := hmac.New(sha512.New384, []byte(creds.Secret))
	mac.Write([]byte(payload))
	signature := encode(mac.Sum(nil), spec.EncodingHex)

	return &SignedRequest{
		URL:    req.BaseURL + req.Path,
		Method: req.Method,
		Headers: []Header{
			{Name: apiKeyHeaderOr(cfg, "key"), Value: creds.APIKey},
			{Name: headerOr(cfg.SignatureHeader, "sign"), Value: signature},
		},
		Body: req.Body,
	}, nil
}

// signDeribit implements the Deribit JSON-RPC pattern: signed string =
// timestamp\nnonce\ndata; the result is placed into the request's auth
// params rather than a header, since Deribit carries auth inside the
// JSON-RPC params object.
func signDeribit(req Request, creds Credentials, cfg spec.Signing, deps Deps) (*SignedRequest, error) {
	if err := requireCredentialField(creds.APIKey, "api_key"); err != nil {
		return nil, err
	}
	if err := requireCredentialField(creds.Secret, "secret"); err != nil {
		return nil, err
	}

	ts, terr := formatTimestamp(deps.Now(), spec.TimestampMillis)
	if terr != nil {
		return nil, terr
	}
	nonce := deps.Nonce()
	data := string(req.Body)

	signed := ts + "\n" + nonce + "\n" + data
	mac := hmac.New(sha256.New, []byte(creds.Secret))
	mac.Write([]byte(signed))
	signature := encode(mac.Sum(nil), spec.EncodingHex)

	params := cloneParams(req.Params)
	params["access_key"] = creds.APIKey
	params["access_timestamp"] = ts
	params["access_nonce"] = nonce
	params["access_signature"] = signature

	return &SignedRequest{
		URL:     req.BaseURL + req.Path,
		Method:  req.Method,
		Headers: nil,
		Body:    []byte(sortedQueryString(params)),
	}, nil
}

func headerOr(configured, fallback string) string {
	if configured != "" {
		return configured
	}
	return fallback
}
