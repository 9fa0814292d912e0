package driver

import (
	"time"

	"vidpir/pir"
	"vidpir/rpc"
)

// RpcProxy is a PirServerDriver over the wire.
type RpcProxy struct {
	*rpc.ClientProxy
}

func NewRpcProxy(serverAddr string, useTLS bool, usePersistent bool) (*RpcProxy, error) {
	proxy, err := rpc.NewClientProxy(serverAddr, useTLS, usePersistent)
	if err != nil {
		return nil, err
	}
	return &RpcProxy{proxy}, nil
}

func (p *RpcProxy) Answer(req pir.QueryReq, resp *pir.Answer) error {
	return p.Call("PirServerDriver.Answer", req, resp)
}

func (p *RpcProxy) Items(none int, out *[]string) error {
	return p.Call("PirServerDriver.Items", none, out)
}

func (p *RpcProxy) NumItems(none int, out *int) error {
	return p.Call("PirServerDriver.NumItems", none, out)
}

func (p *RpcProxy) GetAnswerTimer(none int, out *time.Duration) error {
	return p.Call("PirServerDriver.GetAnswerTimer", none, out)
}

func (p *RpcProxy) GetAnswerBytes(none int, out *int) error {
	return p.Call("PirServerDriver.GetAnswerBytes", none, out)
}

func (p *RpcProxy) ResetMetrics(none int, none2 *int) error {
	return p.Call("PirServerDriver.ResetMetrics", none, none2)
}
