package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sort"

	"worldforge/internal/server/core"
	"worldforge/internal/server/service"

	"go.uber.org/zap"
)

// handler decodes, validates and executes one op
type handler func(ctx context.Context, svc *service.Service, cmd Command) (any, error)

type operation struct {
	created bool
	run     handler
}

// Processor dispatches /world operations to the service layer
type Processor struct {
	svc *service.Service
	ops map[string]operation
	log *zap.Logger
}

// New creates a processor with the full op table registered
func New(svc *service.Service, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Processor{svc: svc, ops: make(map[string]operation), log: log}

	p.register("createWorld", true, bind(func(ctx context.Context, s *service.Service, userID string, req core.CreateWorldRequest) (any, error) {
		return s.CreateWorld(ctx, userID, req)
	}))
	p.register("updateWorld", false, bind(withoutUser((*service.Service).UpdateWorld)))
	p.register("deleteWorld", false, bind(withoutUser((*service.Service).DeleteWorld)))

	p.register("createEra", true, bind(withoutUser((*service.Service).CreateEra)))
	p.register("updateEra", false, bind(withoutUser((*service.Service).UpdateEra)))
	p.register("moveEra", false, bind(withoutUser((*service.Service).MoveEra)))
	p.register("deleteEra", false, bind(withoutUser((*service.Service).DeleteEra)))

	p.register("createSetting", true, bind(withoutUser((*service.Service).CreateSetting)))
	p.register("updateSetting", false, bind(withoutUser((*service.Service).UpdateSetting)))
	p.register("deleteSetting", false, bind(withoutUser((*service.Service).DeleteSetting)))

	p.register("createMarker", true, bind(withoutUser((*service.Service).CreateMarker)))
	p.register("updateMarker", false, bind(withoutUser((*service.Service).UpdateMarker)))
	p.register("deleteMarker", false, bind(withoutUser((*service.Service).DeleteMarker)))

	p.register("saveEraBasicInfo", false, bind(withoutUser((*service.Service).SaveEraBasicInfo)))
	p.register("saveEraBackdrop", false, bind(withoutUser((*service.Service).SaveEraBackdrop)))
	p.register("saveEraTrade", false, bind(withoutUser((*service.Service).SaveEraTrade)))

	p.register("createGovernment", true, bind(withoutUser((*service.Service).CreateGovernment)))
	p.register("updateGovernment", false, bind(withoutUser((*service.Service).UpdateGovernment)))
	p.register("moveGovernment", false, bind(withoutUser((*service.Service).MoveGovernment)))
	p.register("deleteGovernment", false, bind(withoutUser((*service.Service).DeleteGovernment)))

	p.register("createRegion", true, bind(withoutUser((*service.Service).CreateRegion)))
	p.register("updateRegion", false, bind(withoutUser((*service.Service).UpdateRegion)))
	p.register("moveRegion", false, bind(withoutUser((*service.Service).MoveRegion)))
	p.register("deleteRegion", false, bind(withoutUser((*service.Service).DeleteRegion)))

	p.register("replaceCurrencies", false, bind(withoutUser((*service.Service).ReplaceCurrencies)))
	p.register("replaceEraCatalog", false, bind(withoutUser((*service.Service).ReplaceEraCatalog)))
	p.register("replaceCatalysts", false, bind(withoutUser((*service.Service).ReplaceCatalysts)))

	return p
}

func (p *Processor) register(op string, created bool, run handler) {
	p.ops[op] = operation{created: created, run: run}
}

// Ops lists the registered operation names in sorted order
func (p *Processor) Ops() []string {
	names := make([]string, 0, len(p.ops))
	for name := range p.ops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs a command: unknown op, then session, then payload validation
func (p *Processor) Execute(ctx context.Context, cmd Command) ProcessorResponse {
	op, ok := p.ops[cmd.Op]
	if !ok {
		return p.errorResponse(cmd, core.UnknownOperation(cmd.Op))
	}

	if cmd.UserID == "" {
		return p.errorResponse(cmd, core.Unauthorized())
	}

	data, err := op.run(ctx, p.svc, cmd)
	if err != nil {
		return p.errorResponse(cmd, err)
	}

	return ProcessorResponse{
		Success: true,
		Created: op.created,
		Data:    data,
	}
}

// errorResponse creates error response, logging internal causes
func (p *Processor) errorResponse(cmd Command, err error) ProcessorResponse {
	e := core.AsError(err)
	if e.Kind == core.KindInternal {
		p.log.Error("world operation failed",
			zap.String("op", cmd.Op),
			zap.String("user_id", cmd.UserID),
			zap.Error(e.Err),
		)
	}
	return ProcessorResponse{Success: false, Error: e}
}

// bind turns a typed service call into a handler: the body is decoded into R,
// validated and passed on
func bind[R any, T any](fn func(ctx context.Context, svc *service.Service, userID string, req R) (T, error)) handler {
	return func(ctx context.Context, svc *service.Service, cmd Command) (any, error) {
		var req R
		if err := decodeStrict(cmd.Body, &req); err != nil {
			return nil, core.InvalidRequest(err)
		}
		if err := core.Validate(req); err != nil {
			return nil, err
		}
		return fn(ctx, svc, cmd.UserID, req)
	}
}

// withoutUser adapts a service method that does not record the acting user
func withoutUser[R any, T any](fn func(*service.Service, context.Context, R) (T, error)) func(context.Context, *service.Service, string, R) (T, error) {
	return func(ctx context.Context, svc *service.Service, _ string, req R) (T, error) {
		return fn(svc, ctx, req)
	}
}

// decodeStrict decodes a single JSON object. Unknown fields are allowed since
// every body carries op.
func decodeStrict(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}
