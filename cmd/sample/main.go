// Command sample demonstrates the graceful toolkit with a small cat API.
//
// Run:
//
//	go run ./cmd/sample
//
// Print the self-description of the cat list resource with -describe (JSON)
// or -describe -yaml (YAML) and exit.
//
// Then explore:
//
//	GET     http://localhost:8080/v0/cats            paginated cat list
//	POST    http://localhost:8080/v0/cats            create a cat
//	GET     http://localhost:8080/v0/cats/{cat_id}   single cat
//	PUT     http://localhost:8080/v0/cats/{cat_id}   update a cat
//	DELETE  http://localhost:8080/v0/cats/{cat_id}   delete a cat
//	OPTIONS on any route                             self-description
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"

	"github.com/swistakm/graceful"
)

func main() {
	describeFlag := flag.Bool("describe", false, "Print the cat list description and exit")
	yamlFlag := flag.Bool("yaml", false, "Use YAML for -describe output")
	addrFlag := flag.String("addr", ":8080", "Listen address")
	flag.Parse()

	store := newCatStore(
		cat{ID: 0, Name: "kitty", Breed: "siamese"},
		cat{ID: 1, Name: "lucie", Breed: "maine coon"},
		cat{ID: 2, Name: "molly", Breed: "sphynx"},
	)

	catList := store.listResource()

	if *describeFlag {
		var err error
		if *yamlFlag {
			err = graceful.WriteDescriptionYAML(os.Stdout, catList, "/v0/cats")
		} else {
			err = graceful.WriteDescription(os.Stdout, catList, "/v0/cats")
		}
		if err != nil {
			slog.Error("describe failed", "err", err)
			os.Exit(1)
		}
		return
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	api := graceful.NewAPI()
	api.Use(
		graceful.Recovery(),
		graceful.Logger(slog.Default()),
		graceful.Throttle(graceful.ThrottleConfig{Rate: 50, Burst: 100}),
	)
	api.Mount("/v0/cats", catList)
	api.Mount("/v0/cats/{cat_id}", store.objectResource())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting server", "addr", *addrFlag)

	if err := api.ListenAndServe(ctx, *addrFlag); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "err", err)
	}

	slog.Info("server stopped")
}

type cat struct {
	ID    int64
	Name  string
	Breed string
}

// catStore is the pretend backend storage.
type catStore struct {
	mu     sync.Mutex
	nextID int64
	cats   []cat
}

func newCatStore(cats ...cat) *catStore {
	return &catStore{cats: cats, nextID: int64(len(cats))}
}

// catSerializer is how cats look on the wire.
func catSerializer() *graceful.Serializer {
	return graceful.MustSerializer([]graceful.Field{
		graceful.IntField("id", "cat identification number").AsReadOnly(),
		graceful.RawField("name", "cat name"),
		graceful.RawField("breed", "official breed name"),
	})
}

func (s *catStore) listResource() *graceful.Resource {
	return graceful.MustPaginated(graceful.MustResource("CatList",
		graceful.WithDetails("List of all cats in our API"),
		graceful.WithParams(graceful.MustParams(
			graceful.StringParam("breed", "set this param to filter cats by breed"),
		)),
		graceful.WithSerializer(catSerializer()),
		graceful.WithList(s.list),
		graceful.WithCreate(s.create),
	), graceful.WithDefaultPageSize(10), graceful.WithMaxPageSize(100))
}

func (s *catStore) objectResource() *graceful.Resource {
	return graceful.MustResource("Cat",
		graceful.WithDetails("Single cat identified by its id"),
		graceful.WithSerializer(catSerializer()),
		graceful.WithRetrieve(s.retrieve),
		graceful.WithUpdate(s.update),
		graceful.WithDelete(s.delete),
	)
}

func (s *catStore) list(_ context.Context, req *graceful.Request) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]cat, 0, len(s.cats))
	for _, c := range s.cats {
		if breed, ok := req.Params["breed"]; ok && c.Breed != breed {
			continue
		}
		matched = append(matched, c)
	}

	page, _ := req.Params["page"].(int64)
	size, _ := req.Params["page_size"].(int64)
	start := min(page*size, int64(len(matched)))
	end := min(start+size, int64(len(matched)))

	req.Meta["has_more"] = end < int64(len(matched))
	return matched[start:end], nil
}

func (s *catStore) create(_ context.Context, req *graceful.Request) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := cat{
		ID:    s.nextID,
		Name:  fmt.Sprint(req.Validated["name"]),
		Breed: fmt.Sprint(req.Validated["breed"]),
	}
	s.nextID++
	s.cats = append(s.cats, c)
	return c, nil
}

func (s *catStore) retrieve(_ context.Context, req *graceful.Request) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, _, err := s.find(req.Route["cat_id"])
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *catStore) update(_ context.Context, req *graceful.Request) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, i, err := s.find(req.Route["cat_id"])
	if err != nil {
		return nil, err
	}
	s.cats[i].Name = fmt.Sprint(req.Validated["name"])
	s.cats[i].Breed = fmt.Sprint(req.Validated["breed"])
	return s.cats[i], nil
}

func (s *catStore) delete(_ context.Context, req *graceful.Request) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, i, err := s.find(req.Route["cat_id"])
	if err != nil {
		return nil, err
	}
	s.cats = append(s.cats[:i], s.cats[i+1:]...)
	return nil, nil
}

// find looks up a cat by its route capture. Must be called with the lock
// held.
func (s *catStore) find(rawID string) (cat, int, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return cat{}, 0, graceful.Errorf(http.StatusBadRequest, "invalid cat id %q", rawID)
	}
	for i, c := range s.cats {
		if c.ID == id {
			return c, i, nil
		}
	}
	return cat{}, 0, graceful.NotFound(fmt.Sprintf("cat %d does not exist", id))
}
