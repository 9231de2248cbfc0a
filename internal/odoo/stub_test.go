package odoo

import (
	"context"
	"fmt"
	"sync"
)

// stubCall records one call made through stubCaller.
type stubCall struct {
	Service string
	Method  string
	// Model and ModelMethod are set for object.execute_kw.
	Model       string
	ModelMethod string
	Args        []interface{}
}

// stubCaller is a scripted Caller. Handlers are looked up by
// "service.method", or "model.method" for execute_kw.
type stubCaller struct {
	mu       sync.Mutex
	calls    []stubCall
	handlers map[string]func(args []interface{}) (interface{}, error)
}

func newStubCaller() *stubCaller {
	s := &stubCaller{handlers: make(map[string]func([]interface{}) (interface{}, error))}
	s.on("db.list", func([]interface{}) (interface{}, error) {
		return []interface{}{"odoo"}, nil
	})
	s.on("common.authenticate", func([]interface{}) (interface{}, error) {
		return int64(2), nil
	})
	s.on("common.version", func([]interface{}) (interface{}, error) {
		return map[string]interface{}{"server_version": "17.0", "server_serie": "17.0", "protocol_version": int64(1)}, nil
	})
	return s
}

func (s *stubCaller) on(key string, fn func(args []interface{}) (interface{}, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[key] = fn
}

func (s *stubCaller) reply(key string, value interface{}) {
	s.on(key, func([]interface{}) (interface{}, error) { return value, nil })
}

func (s *stubCaller) Call(ctx context.Context, service, method string, args []interface{}) (interface{}, error) {
	call := stubCall{Service: service, Method: method, Args: args}
	key := service + "." + method
	if service == ServiceObject && method == "execute_kw" && len(args) >= 5 {
		call.Model, _ = args[3].(string)
		call.ModelMethod, _ = args[4].(string)
		key = call.Model + "." + call.ModelMethod
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	fn := s.handlers[key]
	s.mu.Unlock()

	if fn == nil {
		return nil, fmt.Errorf("stub: no handler for %s", key)
	}
	return fn(args)
}

func (s *stubCaller) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Service+"."+c.Method == key || c.Model+"."+c.ModelMethod == key {
			n++
		}
	}
	return n
}

func (s *stubCaller) last(key string) stubCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.calls) - 1; i >= 0; i-- {
		c := s.calls[i]
		if c.Service+"."+c.Method == key || c.Model+"."+c.ModelMethod == key {
			return c
		}
	}
	return stubCall{}
}
