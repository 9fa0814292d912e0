// Package rpc carries the protocol between the retrieval client and a
// remote server role, over net/rpc with a Binc codec on plain TCP or
// HTTPS with a self-signed certificate.
package rpc

import (
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/rpc"
	"strings"

	https "github.com/rocketlaunchr/https-go"
	"github.com/ugorji/go/codec"
)

type Server interface {
	RegisterName(name string, rcvr interface{}) error
	Serve() error
	Close() error
}

// NewServer listens on port, over HTTPS when useTLS is set.
func NewServer(port int, useTLS bool) (Server, error) {
	rpcServer := rpc.NewServer()
	codecHandle := CodecHandle()

	if useTLS {
		httpSrv, err := https.Server(fmt.Sprintf("%d", port),
			https.GenerateOptions{Host: "vidpir.app", ECDSACurve: "P256"})
		if err != nil {
			return nil, err
		}
		server := httpRpcServer{httpSrv, httpSrv, rpcServer}
		httpSrv.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, rpc.DefaultRPCPath) {
				return
			}
			w.Header().Set("Content-type", "application/octet-stream")
			codec := httpServerCodec{
				httpResponse: w,
				encoder:      codec.NewEncoder(w, codecHandle),
				decoder:      codec.NewDecoder(r.Body, codecHandle)}
			if err := server.Server.ServeRequest(&codec); err != nil {
				w.Header().Set("Go-Error", fmt.Sprintf("%s", err))
				w.WriteHeader(http.StatusInternalServerError)
			}
		})
		return &server, nil
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen tcp: %v", err)
	}
	return &tcpRpcServer{ln, rpcServer, codecHandle}, nil
}

type httpServerCodec struct {
	httpResponse http.ResponseWriter

	encoder *codec.Encoder
	decoder *codec.Decoder
}

func (c *httpServerCodec) WriteResponse(header *rpc.Response, body interface{}) error {
	if header.Error != "" {
		c.httpResponse.Header().Set("Go-Error", header.Error)
		c.httpResponse.WriteHeader(http.StatusInternalServerError)
	}
	if err := c.encoder.Encode(header); err != nil {
		return err
	}
	return c.encoder.Encode(body)
}

func (c *httpServerCodec) ReadRequestHeader(header *rpc.Request) error {
	return c.decoder.Decode(header)
}

func (c *httpServerCodec) ReadRequestBody(body interface{}) error {
	return c.decoder.Decode(body)
}

func (c *httpServerCodec) Close() error {
	return nil
}

type httpRpcServer struct {
	io.Closer
	httpServer *http.Server
	*rpc.Server
}

func (s *httpRpcServer) Serve() error {
	log.Printf("Serving RPC server over HTTPS on %s\n", s.httpServer.Addr)
	err := s.httpServer.ListenAndServeTLS("", "")
	if err == http.ErrServerClosed {
		log.Println("Server shutdown")
		return nil
	}
	return err
}

type tcpRpcServer struct {
	net.Listener
	*rpc.Server

	codecHandle codec.Handle
}

func (s *tcpRpcServer) Serve() error {
	log.Printf("Serving RPC server over TCP on %s\n", s.Addr().String())
	for {
		conn, err := s.Listener.Accept()
		if err != nil {
			return fmt.Errorf("TCP accept failed: %v", err)
		}
		go s.Server.ServeCodec(codec.GoRpc.ServerCodec(conn, s.codecHandle))
	}
}
