package dispatcher

import (
	"crypto/tls"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"
)

// HTTPPool round-robins a small set of fasthttp clients so a burst of
// mitigation calls does not serialize on one connection pool.
type HTTPPool struct {
	clients []*fasthttp.Client
	index   atomic.Uint32
}

func NewHTTPPool(size int) *HTTPPool {
	if size <= 0 {
		size = 1
	}

	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ClientSessionCache: tls.NewLRUClientSessionCache(128),
	}

	clients := make([]*fasthttp.Client, size)
	for i := range clients {
		clients[i] = &fasthttp.Client{
			MaxConnsPerHost:     512,
			MaxIdleConnDuration: 180 * time.Second,
			ReadTimeout:         2 * time.Second,
			WriteTimeout:        2 * time.Second,
			MaxConnWaitTimeout:  500 * time.Millisecond,
			ReadBufferSize:      16384,
			WriteBufferSize:     16384,
			MaxResponseBodySize: 4 * 1024 * 1024,
			// Mitigation calls are not idempotent from our side; never retry.
			MaxIdemponentCallAttempts: 1,
			DialDualStack:             true,
			TLSConfig:                 tlsConfig,
		}
	}

	return &HTTPPool{clients: clients}
}

func (hp *HTTPPool) GetClient() *fasthttp.Client {
	n := hp.index.Add(1)
	return hp.clients[int(n)%len(hp.clients)]
}

// Warmup primes TLS sessions against the API host so the first real
// mitigation call does not pay the handshake.
func (hp *HTTPPool) Warmup() {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(apiBase + "/gateway")
	req.Header.SetMethod("GET")

	for _, client := range hp.clients {
		if err := client.DoTimeout(req, resp, 2*time.Second); err != nil {
			break
		}
	}
}
