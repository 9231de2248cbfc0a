package mock

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"
)

// Access is the permission set the fake backend reports for one model.
type Access struct {
	Enabled bool
	Read    bool
	Write   bool
	Create  bool
	Unlink  bool
}

// FullAccess enables a model with every operation.
func FullAccess() Access {
	return Access{Enabled: true, Read: true, Write: true, Create: true, Unlink: true}
}

// ReadOnly enables a model for reading only.
func ReadOnly() Access {
	return Access{Enabled: true, Read: true}
}

func (a Access) allows(op string) bool {
	switch op {
	case "read":
		return a.Read
	case "write":
		return a.Write
	case "create":
		return a.Create
	case "unlink":
		return a.Unlink
	}
	return false
}

type model struct {
	name    string
	fields  map[string]interface{}
	records map[int]map[string]interface{}
	nextID  int
	access  Access
}

// OdooServer is a fake backend served over httptest.
type OdooServer struct {
	*httptest.Server

	// APIKey is accepted by the REST endpoints and as execute_kw secret.
	APIKey string
	// Username and Password are accepted by common.authenticate.
	Username string
	Password string
	// UserID is returned by successful authentication.
	UserID int
	// Databases is the answer of db.list.
	Databases []string
	// EnforceAccess makes execute_kw reject operations the model's Access
	// does not allow, the way backend record rules would.
	EnforceAccess bool

	mu       sync.Mutex
	models   map[string]*model
	calls    map[string]int
	inFlight int
	peak     int
	faults   map[string]string
	delay    map[string]time.Duration
}

// NewOdooServer starts a fake backend with one database named "odoo", the
// API key "test-api-key" and the user admin/admin with id 2.
func NewOdooServer() *OdooServer {
	s := &OdooServer{
		APIKey:    "test-api-key",
		Username:  "admin",
		Password:  "admin",
		UserID:    2,
		Databases: []string{"odoo"},
		models:    make(map[string]*model),
		calls:     make(map[string]int),
		faults:    make(map[string]string),
		delay:     make(map[string]time.Duration),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/mcp/auth/validate", s.handleValidate)
	mux.HandleFunc("/mcp/models", s.handleModels)
	mux.HandleFunc("/mcp/models/", s.handleModelAccess)
	mux.HandleFunc("/mcp/xmlrpc/", s.handleXMLRPC)
	s.Server = httptest.NewServer(mux)
	return s
}

// AddModel registers a model. fields uses the fields_get shape: field name
// to attribute map ("type", "string", "relation", ...).
func (s *OdooServer) AddModel(name, label string, fields map[string]map[string]interface{}, access Access) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := make(map[string]interface{}, len(fields)+1)
	raw["id"] = map[string]interface{}{"type": "integer", "string": "ID", "readonly": true}
	for field, attrs := range fields {
		raw[field] = attrs
	}
	s.models[name] = &model{
		name:    label,
		fields:  raw,
		records: make(map[int]map[string]interface{}),
		nextID:  1,
		access:  access,
	}
}

// SetAccess replaces the permissions of a registered model.
func (s *OdooServer) SetAccess(name string, access Access) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.models[name]; ok {
		m.access = access
	}
}

// AddRecord stores a record and returns its id. Many2one values are given
// as []interface{}{id, "display name"}, the way the backend returns them.
func (s *OdooServer) AddRecord(name string, values map[string]interface{}) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.models[name]
	if m == nil {
		panic("mock: unknown model " + name)
	}
	return m.insert(values)
}

// Record returns a copy of a stored record, or nil.
func (s *OdooServer) Record(name string, id int) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.models[name]
	if m == nil || m.records[id] == nil {
		return nil
	}
	return copyRecord(m.records[id])
}

// SetFault makes every call of key fail with the given fault string. Keys
// are "service.method" or "model.method" for execute_kw.
func (s *OdooServer) SetFault(key, fault string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fault == "" {
		delete(s.faults, key)
		return
	}
	s.faults[key] = fault
}

// SetDelay makes every call of key wait d before answering.
func (s *OdooServer) SetDelay(key string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay[key] = d
}

// Calls returns how often key was called. REST endpoints count as
// "rest.validate", "rest.models" and "rest.access".
func (s *OdooServer) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

// TotalCalls returns the number of execute_kw calls for any model.
func (s *OdooServer) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls["object.execute_kw"]
}

// PeakConcurrency returns the largest number of XML-RPC calls that were
// being answered at the same time.
func (s *OdooServer) PeakConcurrency() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}

func (s *OdooServer) enter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
	if s.inFlight > s.peak {
		s.peak = s.inFlight
	}
}

func (s *OdooServer) leave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--
}

func (s *OdooServer) record(key string) (string, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[key]++
	return s.faults[key], s.delay[key]
}

func (s *OdooServer) authorized(r *http.Request) bool {
	return s.APIKey != "" && r.Header.Get("X-API-Key") == s.APIKey
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func restError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   map[string]interface{}{"message": msg},
	})
}

func (s *OdooServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	s.record("rest.validate")
	if !s.authorized(r) {
		restError(w, http.StatusUnauthorized, "Invalid API key")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    map[string]interface{}{"valid": true, "user_id": s.UserID},
	})
}

func (s *OdooServer) handleModels(w http.ResponseWriter, r *http.Request) {
	_, delay := s.record("rest.models")
	time.Sleep(delay)
	if !s.authorized(r) {
		restError(w, http.StatusUnauthorized, "Invalid API key")
		return
	}

	s.mu.Lock()
	models := make([]map[string]interface{}, 0, len(s.models))
	for name, m := range s.models {
		if m.access.Enabled {
			models = append(models, map[string]interface{}{"model": name, "name": m.name})
		}
	}
	s.mu.Unlock()
	sort.Slice(models, func(i, j int) bool {
		return models[i]["model"].(string) < models[j]["model"].(string)
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    map[string]interface{}{"models": models},
	})
}

func (s *OdooServer) handleModelAccess(w http.ResponseWriter, r *http.Request) {
	s.record("rest.access")
	if !s.authorized(r) {
		restError(w, http.StatusUnauthorized, "Invalid API key")
		return
	}

	name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/mcp/models/"), "/access")
	s.mu.Lock()
	var access Access
	if m, ok := s.models[name]; ok {
		access = m.access
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"model":   name,
			"enabled": access.Enabled,
			"operations": map[string]bool{
				"read":   access.Enabled && access.Read,
				"write":  access.Enabled && access.Write,
				"create": access.Enabled && access.Create,
				"unlink": access.Enabled && access.Unlink,
			},
		},
	})
}

func (s *OdooServer) handleXMLRPC(w http.ResponseWriter, r *http.Request) {
	service := strings.TrimPrefix(r.URL.Path, "/mcp/xmlrpc/")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	method, params, err := decodeMethodCall(strings.NewReader(string(body)))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.enter()
	defer s.leave()

	key := service + "." + method
	fault, delay := s.record(key)
	if service == "object" && method == "execute_kw" && len(params) >= 5 {
		modelName, _ := params[3].(string)
		modelMethod, _ := params[4].(string)
		modelFault, d := s.record(modelName + "." + modelMethod)
		if modelFault != "" {
			fault = modelFault
		}
		delay += d
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "text/xml")
	if fault != "" {
		_, _ = w.Write(encodeFault(1, fault))
		return
	}

	result, fault := s.dispatch(service, method, params)
	if fault != "" {
		_, _ = w.Write(encodeFault(1, fault))
		return
	}
	_, _ = w.Write(encodeResponse(result))
}

func (s *OdooServer) dispatch(service, method string, params []interface{}) (interface{}, string) {
	switch service + "." + method {
	case "db.list":
		dbs := make([]interface{}, len(s.Databases))
		for i, db := range s.Databases {
			dbs[i] = db
		}
		return dbs, ""
	case "common.version":
		return map[string]interface{}{
			"server_version":   "17.0",
			"server_serie":     "17.0",
			"protocol_version": 1,
		}, ""
	case "common.authenticate":
		if len(params) >= 3 && params[1] == s.Username && params[2] == s.Password {
			return s.UserID, ""
		}
		return false, ""
	case "object.execute_kw":
		return s.executeKW(params)
	}
	return nil, fmt.Sprintf("Method not found: %s.%s", service, method)
}

func (s *OdooServer) executeKW(params []interface{}) (interface{}, string) {
	if len(params) < 6 {
		return nil, "TypeError: execute_kw() missing required arguments"
	}
	uid, _ := asInt(params[1])
	secret, _ := params[2].(string)
	if uid != s.UserID || (secret != s.APIKey && secret != s.Password) {
		return nil, "odoo.exceptions.AccessDenied: Access Denied"
	}

	modelName, _ := params[3].(string)
	method, _ := params[4].(string)
	args, _ := params[5].([]interface{})
	kwargs := map[string]interface{}{}
	if len(params) > 6 {
		if m, ok := params[6].(map[string]interface{}); ok {
			kwargs = m
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.models[modelName]
	if m == nil {
		return nil, fmt.Sprintf("Object %s doesn't exist", modelName)
	}
	if s.EnforceAccess && !m.access.allows(operationOf(method)) {
		return nil, fmt.Sprintf("odoo.exceptions.AccessError: You are not allowed to %s '%s' (%s) records.", operationOf(method), m.name, modelName)
	}

	switch method {
	case "fields_get":
		return m.fields, ""
	case "search":
		ids := m.search(argAt(args, 0), kwargs)
		return intsToValues(ids), ""
	case "search_count":
		return len(m.search(argAt(args, 0), map[string]interface{}{})), ""
	case "read":
		return m.read(toIDs(argAt(args, 0)), fieldList(args, 1, kwargs))
	case "search_read":
		return m.read(m.search(argAt(args, 0), kwargs), fieldList(args, 1, kwargs))
	case "create":
		values, _ := argAt(args, 0).(map[string]interface{})
		if fault := m.checkValues(modelName, values, true); fault != "" {
			return nil, fault
		}
		return m.insert(values), ""
	case "write":
		ids := toIDs(argAt(args, 0))
		values, _ := argAt(args, 1).(map[string]interface{})
		if fault := m.checkValues(modelName, values, false); fault != "" {
			return nil, fault
		}
		for _, id := range ids {
			if m.records[id] == nil {
				return nil, missing(modelName, id)
			}
		}
		for _, id := range ids {
			for k, v := range values {
				m.records[id][k] = v
			}
		}
		return true, ""
	case "unlink":
		ids := toIDs(argAt(args, 0))
		for _, id := range ids {
			if m.records[id] == nil {
				return nil, missing(modelName, id)
			}
		}
		for _, id := range ids {
			delete(m.records, id)
		}
		return true, ""
	}
	return nil, fmt.Sprintf("AttributeError: type object '%s' has no attribute '%s'", modelName, method)
}

func operationOf(method string) string {
	switch method {
	case "write", "create", "unlink":
		return method
	}
	return "read"
}

func missing(modelName string, id int) string {
	return fmt.Sprintf("odoo.exceptions.MissingError: Record does not exist or has been deleted.\n(Record: %s(%d,), User: 2)", modelName, id)
}

func (m *model) insert(values map[string]interface{}) int {
	id := m.nextID
	m.nextID++
	rec := copyRecord(values)
	rec["id"] = id
	m.records[id] = rec
	return id
}

func (m *model) checkValues(modelName string, values map[string]interface{}, creating bool) string {
	for field := range values {
		if _, ok := m.fields[field]; !ok {
			return fmt.Sprintf("ValueError: Invalid field '%s' on model '%s'", field, modelName)
		}
	}
	if !creating {
		return ""
	}
	for field, raw := range m.fields {
		attrs, _ := raw.(map[string]interface{})
		if required, _ := attrs["required"].(bool); required {
			if _, ok := values[field]; !ok {
				label, _ := attrs["string"].(string)
				return fmt.Sprintf("odoo.exceptions.ValidationError: The field '%s' is required.", label)
			}
		}
	}
	return ""
}

func (m *model) search(rawDomain interface{}, kwargs map[string]interface{}) []int {
	terms, _ := rawDomain.([]interface{})
	match := compileDomain(terms)

	ids := make([]int, 0, len(m.records))
	for id, rec := range m.records {
		if match(rec) {
			ids = append(ids, id)
		}
	}

	order, _ := kwargs["order"].(string)
	m.sortIDs(ids, order)

	offset, _ := asInt(kwargs["offset"])
	if offset > len(ids) {
		offset = len(ids)
	}
	ids = ids[offset:]
	if limit, ok := asInt(kwargs["limit"]); ok && limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids
}

// sortIDs supports a single "field [asc|desc]" clause; the default is id.
func (m *model) sortIDs(ids []int, order string) {
	parts := strings.Fields(order)
	if len(parts) == 0 {
		sort.Ints(ids)
		return
	}
	field := parts[0]
	desc := len(parts) > 1 && strings.EqualFold(parts[1], "desc")
	sort.SliceStable(ids, func(i, j int) bool {
		a := fmt.Sprint(m.records[ids[i]][field])
		b := fmt.Sprint(m.records[ids[j]][field])
		if na, ok := asFloat(m.records[ids[i]][field]); ok {
			if nb, ok := asFloat(m.records[ids[j]][field]); ok {
				if desc {
					return na > nb
				}
				return na < nb
			}
		}
		if desc {
			return a > b
		}
		return a < b
	})
}

func (m *model) read(ids []int, fields []string) (interface{}, string) {
	for _, f := range fields {
		if _, ok := m.fields[f]; !ok {
			return nil, fmt.Sprintf("ValueError: Invalid field '%s' on model", f)
		}
	}

	out := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		rec := m.records[id]
		if rec == nil {
			continue
		}
		row := map[string]interface{}{"id": id}
		if len(fields) == 0 {
			for name := range m.fields {
				row[name] = valueOrFalse(rec[name])
			}
		} else {
			for _, name := range fields {
				row[name] = valueOrFalse(rec[name])
			}
		}
		row["id"] = id
		out = append(out, row)
	}
	return out, ""
}

func valueOrFalse(v interface{}) interface{} {
	if v == nil {
		return false
	}
	return v
}

type matcher func(map[string]interface{}) bool

// compileDomain evaluates prefix-notation domains with implicit AND between
// top-level terms.
func compileDomain(terms []interface{}) matcher {
	pos := 0
	var next func() matcher
	next = func() matcher {
		if pos >= len(terms) {
			return func(map[string]interface{}) bool { return true }
		}
		term := terms[pos]
		pos++
		switch t := term.(type) {
		case string:
			switch t {
			case "&":
				a, b := next(), next()
				return func(r map[string]interface{}) bool { return a(r) && b(r) }
			case "|":
				a, b := next(), next()
				return func(r map[string]interface{}) bool { return a(r) || b(r) }
			case "!":
				a := next()
				return func(r map[string]interface{}) bool { return !a(r) }
			}
		case []interface{}:
			if len(t) == 3 {
				field, _ := t[0].(string)
				op, _ := t[1].(string)
				value := t[2]
				return func(r map[string]interface{}) bool { return compare(r[field], op, value) }
			}
		}
		return func(map[string]interface{}) bool { return true }
	}

	var all []matcher
	for pos < len(terms) {
		all = append(all, next())
	}
	return func(r map[string]interface{}) bool {
		for _, fn := range all {
			if !fn(r) {
				return false
			}
		}
		return true
	}
}

func compare(actual interface{}, op string, want interface{}) bool {
	switch op {
	case "=", "==":
		return equal(actual, want)
	case "!=", "<>":
		return !equal(actual, want)
	case "in", "not in":
		items, _ := want.([]interface{})
		found := false
		for _, item := range items {
			if equal(actual, item) {
				found = true
				break
			}
		}
		return found == (op == "in")
	case "like", "ilike", "=like", "=ilike":
		a, _ := actual.(string)
		w := fmt.Sprint(want)
		if op == "ilike" || op == "=ilike" {
			a, w = strings.ToLower(a), strings.ToLower(w)
		}
		return strings.Contains(a, strings.Trim(w, "%"))
	case "not ilike", "not like":
		return !compare(actual, strings.TrimPrefix(op, "not "), want)
	case ">", ">=", "<", "<=":
		a, okA := asFloat(scalar(actual))
		b, okB := asFloat(want)
		if !okA || !okB {
			as, bs := fmt.Sprint(actual), fmt.Sprint(want)
			switch op {
			case ">":
				return as > bs
			case ">=":
				return as >= bs
			case "<":
				return as < bs
			}
			return as <= bs
		}
		switch op {
		case ">":
			return a > b
		case ">=":
			return a >= b
		case "<":
			return a < b
		}
		return a <= b
	}
	return true
}

// scalar reduces a many2one pair to its id.
func scalar(v interface{}) interface{} {
	if pair, ok := v.([]interface{}); ok && len(pair) == 2 {
		return pair[0]
	}
	return v
}

func equal(a, b interface{}) bool {
	a, b = scalar(a), scalar(b)
	if isFalsy(a) && isFalsy(b) {
		return true
	}
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return fa == fb
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func isFalsy(v interface{}) bool {
	return v == nil || v == false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asInt(v interface{}) (int, bool) {
	f, ok := asFloat(v)
	return int(f), ok
}

func toIDs(v interface{}) []int {
	if n, ok := asInt(v); ok {
		return []int{n}
	}
	items, _ := v.([]interface{})
	ids := make([]int, 0, len(items))
	for _, item := range items {
		if n, ok := asInt(item); ok {
			ids = append(ids, n)
		}
	}
	return ids
}

func intsToValues(ids []int) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func argAt(args []interface{}, i int) interface{} {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func fieldList(args []interface{}, i int, kwargs map[string]interface{}) []string {
	raw := argAt(args, i)
	if raw == nil {
		raw = kwargs["fields"]
	}
	items, _ := raw.([]interface{})
	fields := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			fields = append(fields, s)
		}
	}
	return fields
}

func copyRecord(values map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
