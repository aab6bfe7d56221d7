package demo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arec/internal/activerecord"
	"github.com/roach88/arec/internal/demo"
	"github.com/roach88/arec/internal/meta"
	"github.com/roach88/arec/internal/testutil"
)

func TestRun(t *testing.T) {
	_, db := testutil.OpenDemoDB(t, nil)

	report, err := demo.Run(context.Background(), db)
	require.NoError(t, err)

	assert.Equal(t, int64(1), report.SavedID)
	assert.Equal(t, "Person[id=1, name=First name, surname=Last name]", report.ByID)
	assert.Equal(t, []string{"Person[id=1, name=First name, surname=Last name]"}, report.ByName)
	assert.Equal(t, []string{"Person[id=1, name=First name, surname=Last name]"}, report.All)
}

func TestRun_Twice(t *testing.T) {
	_, db := testutil.OpenDemoDB(t, nil)
	ctx := context.Background()

	_, err := demo.Run(ctx, db)
	require.NoError(t, err)
	report, err := demo.Run(ctx, db)
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.SavedID)
	assert.Len(t, report.ByName, 2)
	assert.Len(t, report.All, 2)
}

func TestSetup_ResetsTables(t *testing.T) {
	s, db := testutil.OpenDemoDB(t, nil)
	ctx := context.Background()

	require.NoError(t, (&demo.Mountain{Name: "Eiger", Height: 3967}).Save(ctx, db))
	require.NoError(t, demo.Setup(ctx, s))

	all, err := activerecord.FindAll[demo.Mountain](ctx, db)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestKinds(t *testing.T) {
	r := meta.NewRegistry(nil)

	n, err := r.Preload(demo.Kinds()...)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	tables := map[string]string{}
	for _, k := range demo.Kinds() {
		info, err := k.Describe(r)
		require.NoError(t, err)
		tables[info.Type] = info.Table + "/" + info.Keys
	}
	assert.Equal(t, map[string]string{
		"Person":                 "person/internal",
		"PersonAlias":            "person/internal",
		"PersonDatabaseSequence": "person_with_db_sequence/external",
		"Mountain":               "mountain/internal",
	}, tables)
}

func TestString(t *testing.T) {
	m := &demo.Mountain{Name: "Dom", Height: 4545}
	assert.Equal(t, "Mountain[id=<nil>, name=Dom, height=4545]", m.String())

	a := &demo.PersonAlias{NameValue: "n", SurnameValue: "s"}
	assert.Equal(t, "PersonAlias[id=<nil>, nameValue=n, surnameValue=s]", a.String())
}

func TestSchema(t *testing.T) {
	assert.Contains(t, demo.Schema(), "CREATE TABLE person_with_db_sequence (id INTEGER PRIMARY KEY")
}
