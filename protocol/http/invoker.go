package http

import (
	"github.com/kycflow/kycflow/context"
	"github.com/kycflow/kycflow/internal/protocolmeta"
	"github.com/kycflow/kycflow/protocol"
)

// Invoker returns a protocol.Invoker which sends the request built by build.
// The request path is resolved with the variables of the context before sending.
func (c *Client) Invoker(build func(*context.Context) (*Request, error)) protocol.Invoker {
	return protocol.InvokerFunc(func(ctx *context.Context) (*context.Context, any, error) {
		req, err := build(ctx)
		if err != nil {
			return ctx, nil, err
		}
		ctx, res, err := c.Invoke(ctx, req)
		if err != nil {
			return ctx, nil, err
		}
		return ctx, res, nil
	})
}

// Invoke resolves the path of req, tags it with the running step, sends it and stores the request and the response into the returned context.
func (c *Client) Invoke(ctx *context.Context, req *Request) (*context.Context, *Response, error) {
	path, err := ctx.ExecuteString(req.Path)
	if err != nil {
		return ctx, nil, err
	}
	r := *req
	r.Path = path
	r.Header = protocolmeta.WithStep(req.Header, ctx.Reporter().Name())
	ctx = ctx.WithRequest(&r)
	if ctx.Verbose() {
		logYAML(ctx, "request", requestDump{
			Method: r.Method,
			URL:    c.buildURL(r.Path, r.Query).String(),
			Header: r.Header,
			Body:   r.Body,
			Files:  r.Files,
		})
	}
	res, err := c.Do(ctx.RequestContext(), &r)
	if err != nil {
		return ctx, nil, err
	}
	ctx = ctx.WithResponse(res)
	if ctx.Verbose() {
		logYAML(ctx, "response", res)
	}
	return ctx, res, nil
}

type requestDump struct {
	Method string     `yaml:"method"`
	URL    string     `yaml:"url"`
	Header any        `yaml:"header,omitempty"`
	Body   any        `yaml:"body,omitempty"`
	Files  []FilePart `yaml:"files,omitempty"`
}

func logYAML(ctx *context.Context, kind string, v any) {
	b, err := ctx.ColorConfig().MarshalYAML(v)
	if err != nil {
		ctx.Reporter().Logf("failed to dump %s: %s", kind, err)
		return
	}
	ctx.Reporter().Logf("%s:\n%s", kind, b)
}
