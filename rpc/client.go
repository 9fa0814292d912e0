package rpc

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/rpc"

	"github.com/ugorji/go/codec"
)

// ClientProxy dials the server role. With persistent (or TLS) use it
// caches one connection; otherwise it dials per call.
type ClientProxy struct {
	serverAddr string
	useTLS     bool
	persistent bool

	codecHandle codec.Handle

	cachedCodec  rpc.ClientCodec
	cachedClient *rpc.Client
}

func NewClientProxy(serverAddr string, useTLS bool, usePersistent bool) (*ClientProxy, error) {
	proxy := ClientProxy{serverAddr: serverAddr, useTLS: useTLS, codecHandle: CodecHandle()}
	if usePersistent || useTLS {
		// Always cache the TLS codec.
		clientCodec, err := proxy.codec()
		if err != nil {
			return nil, err
		}
		proxy.cachedCodec = clientCodec

		proxy.cachedClient, err = proxy.rpcClient()
		if err != nil {
			proxy.cachedCodec.Close()
			return nil, err
		}
		proxy.persistent = true
	}
	return &proxy, nil
}

func (p *ClientProxy) Call(serviceMethod string, args interface{}, reply interface{}) error {
	client, err := p.rpcClient()
	if err != nil {
		return err
	}
	defer p.releaseClient(client)
	return client.Call(serviceMethod, args, reply)
}

func (p *ClientProxy) Close() {
	if p.persistent {
		p.cachedClient.Close()
		p.cachedCodec.Close()
	}
}

func (p *ClientProxy) codec() (rpc.ClientCodec, error) {
	if p.persistent {
		return p.cachedCodec, nil
	}
	if p.useTLS {
		return newHttpPostCodec(p.codecHandle, p.serverAddr, p.persistent), nil
	}
	return newTCPCodec(p.codecHandle, p.serverAddr)
}

func (p *ClientProxy) rpcClient() (*rpc.Client, error) {
	if p.persistent {
		return p.cachedClient, nil
	}
	clientCodec, err := p.codec()
	if err != nil {
		return nil, err
	}
	return rpc.NewClientWithCodec(clientCodec), nil
}

func (p *ClientProxy) releaseClient(client *rpc.Client) error {
	if !p.persistent {
		return client.Close()
	}
	return nil
}

func newTCPCodec(codecHandle codec.Handle, serverAddr string) (rpc.ClientCodec, error) {
	conn, err := net.Dial("tcp", serverAddr)
	if err != nil {
		return nil, err
	}
	return codec.GoRpc.ClientCodec(conn, codecHandle), nil
}

type httpPostCodec struct {
	http       *http.Client
	serverAddr string
	encoder    *codec.Encoder
	decoder    *codec.Decoder
	bodyReader chan (io.ReadCloser)
	bodyCloser io.Closer
}

func newHttpPostCodec(codecHandle codec.Handle, serverAddr string, usePersistent bool) *httpPostCodec {
	// The server uses a self-signed certificate.
	config := tls.Config{
		InsecureSkipVerify: true,
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			DialTLS: func(network, addr string) (net.Conn, error) {
				return tls.Dial("tcp", addr, &config)
			},
			DisableKeepAlives: !usePersistent,
		},
	}

	return &httpPostCodec{
		http:       httpClient,
		serverAddr: serverAddr,
		encoder:    codec.NewEncoderBytes(nil, codecHandle),
		decoder:    codec.NewDecoder(nil, codecHandle),
		bodyReader: make(chan io.ReadCloser),
	}
}

func (c *httpPostCodec) WriteRequest(rpcReq *rpc.Request, body interface{}) error {
	var reqBuf []byte
	c.encoder.ResetBytes(&reqBuf)
	if err := c.encoder.Encode(rpcReq); err != nil {
		return fmt.Errorf("encoder WriteRequest header failed: %v", err)
	}
	if err := c.encoder.Encode(body); err != nil {
		return fmt.Errorf("encoder WriteRequest body failed: %v", err)
	}

	url := "https://" + c.serverAddr + rpc.DefaultRPCPath + "/" + rpcReq.ServiceMethod
	httpReq, err := http.NewRequest("POST", url, bytes.NewBuffer(reqBuf))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/octet-stream")
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed HTTP POST: %v", err)
	}
	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusInternalServerError {
		httpResp.Body.Close()
		return fmt.Errorf("failed HTTP POST: %v", httpResp.StatusCode)
	}
	c.bodyReader <- httpResp.Body
	return nil
}

func (c *httpPostCodec) ReadResponseHeader(header *rpc.Response) error {
	respBody := <-c.bodyReader
	c.decoder.Reset(respBody)
	c.bodyCloser = respBody
	return c.decoder.Decode(header)
}

func (c *httpPostCodec) ReadResponseBody(body interface{}) error {
	defer c.bodyCloser.Close()
	return c.decoder.Decode(body)
}

func (c *httpPostCodec) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
