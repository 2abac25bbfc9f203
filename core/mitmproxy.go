package core

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"io"
	"log"
	"math/big"
	"mime"
	"net/http"
	"os"
	"pagewidth/logger"
	"pagewidth/models"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/elazarl/goproxy"
	"golang.org/x/net/html"
)

// Client hint headers carrying the browser's layout viewport width.
const (
	HeaderViewportWidth       = "Sec-CH-Viewport-Width"
	HeaderViewportWidthLegacy = "Viewport-Width"
	HeaderAcceptCH            = "Accept-CH"
)

// GenerateAndSaveCA creates a self-signed CA for the style proxy and writes
// it to certPath and keyPath in PEM form.
func GenerateAndSaveCA(certPath, keyPath string) error {
	cert, key, err := generateCA("pagewidth Proxy CA")
	if err != nil {
		logger.Error("Failed to generate CA: %v", err)
		return fmt.Errorf("failed to generate CA: %w", err)
	}

	certOut, err := os.Create(certPath)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", certPath, err)
	}
	defer certOut.Close()
	if err := pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw}); err != nil {
		return fmt.Errorf("failed to write CA certificate to %s: %w", certPath, err)
	}
	logger.ProxyInfo("CA certificate saved to %s", certPath)

	keyOut, err := os.OpenFile(keyPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", keyPath, err)
	}
	defer keyOut.Close()
	privBytes, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return fmt.Errorf("failed to marshal CA private key: %w", err)
	}
	if err := pem.Encode(keyOut, &pem.Block{Type: "PRIVATE KEY", Bytes: privBytes}); err != nil {
		return fmt.Errorf("failed to write CA private key to %s: %w", keyPath, err)
	}
	logger.ProxyInfo("CA private key saved to %s", keyPath)
	return nil
}

// LoadCA reads a PEM certificate and a PKCS8 or PKCS1 RSA key.
func LoadCA(certPath, keyPath string) (*tls.Certificate, error) {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate file %s: %w", certPath, err)
	}
	certBlock, _ := pem.Decode(certPEM)
	if certBlock == nil || certBlock.Type != "CERTIFICATE" {
		return nil, fmt.Errorf("failed to decode CA certificate PEM block from %s", certPath)
	}
	cert, err := x509.ParseCertificate(certBlock.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CA certificate from %s: %w", certPath, err)
	}

	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA key file %s: %w", keyPath, err)
	}
	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return nil, fmt.Errorf("failed to decode CA key PEM block from %s", keyPath)
	}

	var parsed interface{}
	switch keyBlock.Type {
	case "PRIVATE KEY":
		parsed, err = x509.ParsePKCS8PrivateKey(keyBlock.Bytes)
	case "RSA PRIVATE KEY":
		parsed, err = x509.ParsePKCS1PrivateKey(keyBlock.Bytes)
	default:
		return nil, fmt.Errorf("unknown CA key PEM block type '%s' from %s", keyBlock.Type, keyPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse CA private key from %s: %w", keyPath, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("CA key from %s is not an RSA private key", keyPath)
	}

	logger.ProxyInfo("CA certificate and key loaded from %s", certPath)
	return &tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  key,
		Leaf:        cert,
	}, nil
}

func generateCA(commonName string) (*x509.Certificate, *rsa.PrivateKey, error) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}

	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	serialNumber, err := rand.Int(rand.Reader, serialNumberLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"pagewidth"},
			CommonName:   commonName,
		},
		NotBefore:             time.Now().Add(-1 * time.Hour),
		NotAfter:              time.Now().AddDate(10, 0, 0),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &privKey.PublicKey, privKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create CA certificate: %w", err)
	}
	cert, err := x509.ParseCertificate(derBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse generated CA certificate: %w", err)
	}
	return cert, privKey, nil
}

// ViewportWidth reads the viewport client hint from h, falling back to
// fallback when neither header carries a positive integer.
func ViewportWidth(h http.Header, fallback int) int {
	for _, name := range []string{HeaderViewportWidth, HeaderViewportWidthLegacy} {
		v := strings.TrimSpace(h.Get(name))
		if v == "" {
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 1 {
			return int(f)
		}
	}
	return fallback
}

// StyleProxy injects the managed style element into proxied HTML documents.
type StyleProxy struct {
	engine          *Engine
	defaultViewport int
}

func NewStyleProxy(engine *Engine, defaultViewport int) *StyleProxy {
	return &StyleProxy{engine: engine, defaultViewport: defaultViewport}
}

// RewriteResponse evaluates the document behind req and rewrites resp in
// place. Non-HTML responses, unknown encodings and unparseable bodies pass
// through untouched.
func (p *StyleProxy) RewriteResponse(ctx context.Context, req *http.Request, resp *http.Response) *http.Response {
	if resp == nil || req == nil || req.URL == nil || resp.Body == nil {
		return resp
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "text/html" {
		return resp
	}
	resp.Header.Add(HeaderAcceptCH, HeaderViewportWidth)

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		logger.ProxyError("RESP: reading body for %s: %v", req.URL, err)
		resp.Body = io.NopCloser(bytes.NewReader(raw))
		return resp
	}
	restore := func() *http.Response {
		resp.Body = io.NopCloser(bytes.NewReader(raw))
		return resp
	}

	body, err := decodeBody(resp.Header.Get("Content-Encoding"), raw)
	if err != nil {
		logger.ProxyDebug("RESP: leaving %s untouched: %v", req.URL, err)
		return restore()
	}

	u := *req.URL
	if u.Host == "" {
		u.Host = req.Host
	}
	// MITM'd requests carry the CONNECT target, e.g. example.com:443.
	u.Host = HostKey(&u)
	viewport := ViewportWidth(req.Header, p.defaultViewport)
	_, d, err := p.engine.Evaluate(ctx, &u, viewport)
	if err != nil {
		logger.ProxyError("RESP: evaluating %s: %v", u.String(), err)
		d = models.ClearDecision("")
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		logger.ProxyDebug("RESP: parsing %s failed: %v", u.String(), err)
		return restore()
	}
	sink := NewDocumentSink(doc)
	if _, had := sink.StyleText(); d.IsClear() && !had {
		return restore()
	}
	if err := ApplyDecision(sink, d); err != nil {
		logger.ProxyError("RESP: applying style to %s: %v", u.String(), err)
		return restore()
	}

	var out bytes.Buffer
	if err := html.Render(&out, doc); err != nil {
		logger.ProxyError("RESP: rendering %s: %v", u.String(), err)
		return restore()
	}
	resp.Body = io.NopCloser(&out)
	resp.ContentLength = int64(out.Len())
	resp.Header.Del("Content-Encoding")
	resp.Header.Set("Content-Length", strconv.Itoa(out.Len()))
	logger.ProxyInfo("RESP: %s %s at viewport %d (%s)", d.Kind, u.String(), viewport, d.Reason)
	return resp
}

func decodeBody(encoding string, raw []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return raw, nil
	case "br":
		return io.ReadAll(brotli.NewReader(bytes.NewReader(raw)))
	case "gzip":
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

// Handler builds the goproxy server with MITM for HTTPS and the HTML
// response hook.
func (p *StyleProxy) Handler(ca *tls.Certificate) *goproxy.ProxyHttpServer {
	proxy := goproxy.NewProxyHttpServer()
	proxy.Logger = log.New(io.Discard, "", 0)

	if ca != nil {
		proxy.OnRequest().HandleConnect(goproxy.FuncHttpsHandler(func(host string, ctx *goproxy.ProxyCtx) (*goproxy.ConnectAction, string) {
			logger.ProxyDebug("HandleConnect for session %d, host %s", ctx.Session, host)
			return &goproxy.ConnectAction{Action: goproxy.ConnectMitm, TLSConfig: goproxy.TLSConfigFromCA(ca)}, host
		}))
	}

	proxy.OnRequest().DoFunc(func(r *http.Request, ctx *goproxy.ProxyCtx) (*http.Request, *http.Response) {
		logger.ProxyDebug("REQ: %s %s", r.Method, r.URL.String())
		return r, nil
	})

	proxy.OnResponse(goproxy.ContentTypeIs("text/html")).DoFunc(func(resp *http.Response, ctx *goproxy.ProxyCtx) *http.Response {
		if ctx.Req == nil {
			return resp
		}
		return p.RewriteResponse(ctx.Req.Context(), ctx.Req, resp)
	})
	return proxy
}

// StartStyleProxy loads the CA and serves the style proxy on port.
func StartStyleProxy(port string, engine *Engine, caCertPath, caKeyPath string, defaultViewport int) error {
	ca, err := LoadCA(caCertPath, caKeyPath)
	if err != nil {
		return fmt.Errorf("could not load CA certificate/key: %w. Please run 'proxy init-ca' or check config", err)
	}
	p := NewStyleProxy(engine, defaultViewport)
	logger.ProxyInfo("Style proxy starting on :%s (default viewport %d)", port, defaultViewport)
	return http.ListenAndServe(":"+port, p.Handler(ca))
}
