package prompt_test

import (
	"strings"
	"testing"

	"github.com/boddenberg/cargo-chat-bfa-go/internal/catalog"
	chatdomain "github.com/boddenberg/cargo-chat-bfa-go/internal/chat/domain"
	"github.com/boddenberg/cargo-chat-bfa-go/internal/chat/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_SectionsInOrder(t *testing.T) {
	b := prompt.NewBuilder(catalog.MustLoad())

	out := b.Build(prompt.Input{
		Query: "¿Cuánto cuesta Shanghai a Manzanillo?",
		History: []chatdomain.ChatMessage{
			{Role: chatdomain.RoleUser, Content: "hola"},
			{Role: chatdomain.RoleAssistant, Content: "¡Hola! ¿En qué puedo ayudarle?"},
		},
	})

	markers := []string{"Eres el asistente virtual", "## Información de la empresa", "## Reglas", "## Rutas y tarifas", "## Conversación previa", "## Mensaje del cliente"}
	last := -1
	for _, m := range markers {
		idx := strings.Index(out, m)
		require.GreaterOrEqual(t, idx, 0, m)
		assert.Greater(t, idx, last, m)
		last = idx
	}
	assert.True(t, strings.HasSuffix(out, "Asistente:"))
}

func TestBuild_OmitsEmptyHistory(t *testing.T) {
	b := prompt.NewBuilder(catalog.MustLoad())

	out := b.Build(prompt.Input{Query: "hola"})
	assert.NotContains(t, out, "## Conversación previa")

	sections := b.Sections(prompt.Input{Query: "hola"})
	assert.Len(t, sections, len(prompt.Order))
	assert.Empty(t, sections[prompt.SectionHistory])
}

func TestRoutes_FiltersByLocation(t *testing.T) {
	store := catalog.MustLoad()
	b := prompt.NewBuilder(store)

	s := b.Routes([]string{"Veracruz"})
	assert.Contains(t, s, "Rotterdam")
	assert.Contains(t, s, "USD 2300 por contenedor")
	assert.NotContains(t, s, "Shanghai")

	all := b.Routes(nil)
	for _, r := range store.Routes() {
		assert.Contains(t, all, r.Carrier)
	}
}

func TestRoutes_UnknownLocationListsEverything(t *testing.T) {
	b := prompt.NewBuilder(catalog.MustLoad())
	assert.Equal(t, b.Routes(nil), b.Routes([]string{"Atlantis"}))
}

func TestRulesSection_Numbered(t *testing.T) {
	s := prompt.RulesSection()
	assert.Contains(t, s, "1. ")
	assert.Contains(t, s, "8. ")
}

func TestHistory_SkipsSystemMessages(t *testing.T) {
	s := prompt.History([]chatdomain.ChatMessage{
		{Role: chatdomain.RoleSystem, Content: "interno"},
		{Role: chatdomain.RoleUser, Content: "precio"},
	})
	assert.NotContains(t, s, "interno")
	assert.Contains(t, s, "Cliente: precio")

	assert.Empty(t, prompt.History([]chatdomain.ChatMessage{{Role: chatdomain.RoleSystem, Content: "x"}}))
}

func TestKnowledge_IncludesCompanyContact(t *testing.T) {
	store := catalog.MustLoad()
	s := prompt.NewBuilder(store).Knowledge()
	assert.Contains(t, s, store.Company().Phone)
	assert.Contains(t, s, store.Company().Email)
}
