package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dekarrin/taul/grammar"
	"github.com/dekarrin/taul/internal/decode"
	"github.com/dekarrin/taul/internal/logging"
	"github.com/dekarrin/taul/internal/specbin"
	"github.com/dekarrin/taul/lex"
	"github.com/dekarrin/taul/loader"
	"github.com/dekarrin/taul/parse"
	"github.com/dekarrin/taul/service/dao"
	"github.com/dekarrin/taul/tree"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Service is the grammar service: it accepts uploaded spec binaries,
// compiles and caches them as validated grammars, and runs parses against
// cached grammars on request. Grounded on server.TunaQuestServer's shape
// (a router plus a store plus auth config), trimmed to the single
// grammar-cache resource this service owns.
type Service struct {
	router http.Handler
	store  dao.Store
	log    *logging.Logger

	secret            []byte
	adminPasswordHash []byte

	// UnauthDelay is slept before responding to a failed auth attempt, the
	// same throttle server/config.go's UnauthDelayMillis provides.
	UnauthDelay time.Duration

	// TokenTTL is how long an issued bearer token remains valid.
	TokenTTL time.Duration
}

// New builds a Service backed by store, using secret to sign bearer tokens
// and adminPasswordHash (bcrypt, see HashAdminPassword) to gate write endpoints.
func New(store dao.Store, log *logging.Logger, secret []byte, adminPasswordHash []byte) *Service {
	if log == nil {
		log = logging.Default()
	}

	svc := &Service{
		store:             store,
		log:               log,
		secret:            secret,
		adminPasswordHash: adminPasswordHash,
		UnauthDelay:       time.Second,
		TokenTTL:          time.Hour,
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/login", svc.handleLogin)
	r.Get("/grammars/{id}", svc.handleGetGrammar)
	r.Post("/grammars/{id}/parse", svc.handleParse)

	r.Group(func(r chi.Router) {
		r.Use(svc.requireAuth)
		r.Post("/grammars", svc.handleUploadGrammar)
		r.Delete("/grammars/{id}", svc.handleDeleteGrammar)
	})

	svc.router = r
	return svc
}

// ServeHTTP lets Service be passed directly to http.ListenAndServe.
func (svc *Service) ServeHTTP(w http.ResponseWriter, req *http.Request) { svc.router.ServeHTTP(w, req) }

// Close releases the Service's underlying store.
func (svc *Service) Close() error { return svc.store.Close() }

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (svc *Service) handleLogin(w http.ResponseWriter, req *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		BadRequest("malformed request body", "decode login body: %v", err).WriteResponse(w)
		return
	}

	if !checkAdminPassword(svc.adminPasswordHash, body.Password) {
		svc.unauthedDelay()
		Unauthorized("incorrect password", "login attempt rejected").WriteResponse(w)
		return
	}

	tok, err := issueToken(svc.secret, svc.adminPasswordHash, svc.TokenTTL)
	if err != nil {
		InternalServerError("issue token: %v", err).WriteResponse(w)
		return
	}

	OK(loginResponse{Token: tok}, "admin login succeeded").WriteResponse(w)
}

type grammarMeta struct {
	ID        string   `json:"id"`
	Hash      string   `json:"hash"`
	StartRule string   `json:"start_rule"`
	Rules     []string `json:"rules"`
	LL1       bool     `json:"ll1"`
	CreatedAt int64    `json:"created_at"`
}

// handleUploadGrammar accepts a raw spec binary body, loads and validates
// it, caches its §6.3 serialized form keyed by content hash (skipping the
// parse entirely on a hash hit), and returns the cache record's metadata.
func (svc *Service) handleUploadGrammar(w http.ResponseWriter, req *http.Request) {
	raw, err := io.ReadAll(req.Body)
	if err != nil {
		BadRequest("could not read request body", "read upload body: %v", err).WriteResponse(w)
		return
	}
	if len(raw) == 0 {
		BadRequest("request body must contain a spec binary", "empty upload body").WriteResponse(w)
		return
	}

	sum := sha256.Sum256(raw)
	hash := hex.EncodeToString(sum[:])

	ctx := req.Context()
	if existing, err := svc.store.GetByHash(ctx, hash); err == nil {
		svc.respondWithCachedMeta(w, existing)
		return
	} else if err != dao.ErrNotFound {
		InternalServerError("lookup grammar by hash: %v", err).WriteResponse(w)
		return
	}

	var spec specbin.Spec
	_ = spec.UnmarshalBinary(raw)

	result := loader.Load(spec)
	if result.Counter.HasErrors() {
		BadRequest("grammar failed validation", "load grammar: %v", result.Counter.Diagnostics()).WriteResponse(w)
		return
	}

	serialized := loader.Serialize(result.Grammar)

	id, err := uuid.NewRandom()
	if err != nil {
		InternalServerError("generate grammar id: %v", err).WriteResponse(w)
		return
	}

	rec := dao.Record{ID: id, Hash: hash, Data: serialized, CreatedAt: time.Now()}
	if err := svc.store.Put(ctx, rec); err != nil {
		InternalServerError("store grammar: %v", err).WriteResponse(w)
		return
	}

	svc.log.Infof("compiled and cached grammar %s (hash %s)", id, hash)
	Created(metaFromRecord(rec, result.Grammar), "grammar %s cached", id).WriteResponse(w)
}

func (svc *Service) respondWithCachedMeta(w http.ResponseWriter, rec dao.Record) {
	g, err := loadFromRecord(rec)
	if err != nil {
		InternalServerError("reload cached grammar: %v", err).WriteResponse(w)
		return
	}
	OK(metaFromRecord(rec, g), "grammar already cached as %s", rec.ID).WriteResponse(w)
}

func (svc *Service) handleGetGrammar(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		BadRequest("id must be a valid uuid", "parse grammar id: %v", err).WriteResponse(w)
		return
	}

	rec, err := svc.store.GetByID(req.Context(), id)
	if err == dao.ErrNotFound {
		NotFound("grammar %s not found", id).WriteResponse(w)
		return
	} else if err != nil {
		InternalServerError("lookup grammar: %v", err).WriteResponse(w)
		return
	}

	g, err := loadFromRecord(rec)
	if err != nil {
		InternalServerError("reload cached grammar: %v", err).WriteResponse(w)
		return
	}

	OK(metaFromRecord(rec, g), "fetched grammar %s", id).WriteResponse(w)
}

func (svc *Service) handleDeleteGrammar(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		BadRequest("id must be a valid uuid", "parse grammar id: %v", err).WriteResponse(w)
		return
	}

	if err := svc.store.Delete(req.Context(), id); err == dao.ErrNotFound {
		NotFound("grammar %s not found", id).WriteResponse(w)
		return
	} else if err != nil {
		InternalServerError("delete grammar: %v", err).WriteResponse(w)
		return
	}

	svc.log.Infof("deleted cached grammar %s", id)
	NoContent("grammar %s deleted", id).WriteResponse(w)
}

type treeNode struct {
	Terminal bool       `json:"terminal"`
	Name     string     `json:"name"`
	Position int        `json:"position,omitempty"`
	Length   int        `json:"length,omitempty"`
	Children []treeNode `json:"children,omitempty"`
}

func (svc *Service) handleParse(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		BadRequest("id must be a valid uuid", "parse grammar id: %v", err).WriteResponse(w)
		return
	}

	rec, err := svc.store.GetByID(req.Context(), id)
	if err == dao.ErrNotFound {
		NotFound("grammar %s not found", id).WriteResponse(w)
		return
	} else if err != nil {
		InternalServerError("lookup grammar: %v", err).WriteResponse(w)
		return
	}

	g, err := loadFromRecord(rec)
	if err != nil {
		InternalServerError("reload cached grammar: %v", err).WriteResponse(w)
		return
	}

	src, err := io.ReadAll(req.Body)
	if err != nil {
		BadRequest("could not read request body", "read parse body: %v", err).WriteResponse(w)
		return
	}

	dec, err := decode.New(src, decode.AutoBOM)
	if err != nil {
		BadRequest("could not decode source text", "decode parse source: %v", err).WriteResponse(w)
		return
	}

	p, err := parse.New(g)
	if err != nil {
		InternalServerError("build parser: %v", err).WriteResponse(w)
		return
	}

	tr, err := p.ParseStart(lex.New(g, dec))
	if err != nil {
		BadRequest("source did not match the grammar", "parse: %v", err).WriteResponse(w)
		return
	}

	root := treeToJSON(tr, tr.Root(), tr.Len())
	OK(root, "parsed %d bytes against grammar %s", len(src), id).WriteResponse(w)
}

func treeToJSON(t tree.Tree, i, end int) treeNode {
	node := t.At(i)
	n := treeNode{Terminal: node.Terminal, Name: node.Name}
	if node.Terminal {
		n.Position = node.Token.Position()
		n.Length = node.Token.Length()
		return n
	}
	for _, c := range t.Children(i) {
		n.Children = append(n.Children, treeToJSON(t, c, i+node.Span))
	}
	return n
}

func metaFromRecord(rec dao.Record, g *grammar.Grammar) grammarMeta {
	return grammarMeta{
		ID:        rec.ID.String(),
		Hash:      rec.Hash,
		StartRule: g.StartSymbol(),
		Rules:     g.SortedRuleNames(),
		LL1:       g.IsLL1(),
		CreatedAt: rec.CreatedAt.Unix(),
	}
}

func loadFromRecord(rec dao.Record) (*grammar.Grammar, error) {
	result := loader.Deserialize(rec.Data)
	if result.Counter.HasErrors() {
		return nil, fmt.Errorf("%v", result.Counter.Diagnostics())
	}
	return result.Grammar, nil
}
