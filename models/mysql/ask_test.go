package mysql

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/clause"

	"github.com/modular-market/market/models/repo"
	"github.com/modular-market/market/types"
)

var askCases []types.Ask

func TestAskRepo(t *testing.T) {
	collection := types.NewCollection(types.ClassMulti, "0xc011ec7104")
	askCases = []types.Ask{
		{
			Collection:     collection,
			TokenID:        0,
			Index:          1,
			Seller:         "0xa11ce",
			Quantity:       5,
			Price:          types.NewAmount(100),
			Currency:       "0xc04417",
			FundsRecipient: "0xa11ce",
			Active:         true,
		},
		{
			Collection:     collection,
			TokenID:        0,
			Index:          2,
			Seller:         "0xa11ce",
			Quantity:       4,
			Price:          types.NewAmount(100),
			Currency:       "0xc04417",
			FundsRecipient: "0xa11ce",
			FindersFeeBps:  100,
			Active:         true,
		},
	}

	r, mock, sqlDB := setup(t)

	t.Run("mysql test SaveAsk", wrapper(testSaveAsk, r, mock))
	t.Run("mysql test GetAsk", wrapper(testGetAsk, r, mock))
	t.Run("mysql test ListAsks", wrapper(testListAsks, r, mock))

	assert.NoError(t, closeDB(mock, sqlDB))
}

func testSaveAsk(t *testing.T, r repo.Repo, mock sqlmock.Sqlmock) {
	db, err := getMysqlDryrunDB()
	assert.NoError(t, err)

	ask := askCases[0]
	dbAsk := fromAsk(&ask)

	sql, vars, err := getSQL(db.WithContext(context.Background()).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "collection_class"}, {Name: "collection_addr"},
			{Name: "token_id"}, {Name: "ask_index"},
		},
		UpdateAll: true,
	}).Save(dbAsk))
	assert.NoError(t, err)

	// created_at/updated_at are maintained by gorm
	vars[len(vars)-1] = sqlmock.AnyArg()
	vars[len(vars)-2] = sqlmock.AnyArg()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(sql)).WithArgs(vars...).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	assert.NoError(t, r.AskRepo().SaveAsk(context.Background(), &ask))
}

func testGetAsk(t *testing.T, r repo.Repo, mock sqlmock.Sqlmock) {
	ask := askCases[0]
	dbAsk := fromAsk(&ask)

	db, err := getMysqlDryrunDB()
	assert.NoError(t, err)

	rows, err := getFullRows(dbAsk)
	assert.NoError(t, err)

	sql, vars, err := getSQL(db.WithContext(context.Background()).Take(&dbAsk,
		"collection_class = ? and collection_addr = ? and token_id = ? and ask_index = ?",
		dbAsk.CollectionClass, dbAsk.CollectionAddr, dbAsk.TokenID, dbAsk.AskIndex))
	assert.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(sql)).WithArgs(vars...).WillReturnRows(rows)

	res, err := r.AskRepo().GetAsk(context.Background(), ask.Collection, ask.TokenID, ask.Index)
	assert.NoError(t, err)
	assert.Equal(t, ask, *res)
}

func testListAsks(t *testing.T, r repo.Repo, mock sqlmock.Sqlmock) {
	db, err := getMysqlDryrunDB()
	assert.NoError(t, err)

	var dbAsks []*mysqlAsk
	for i := range askCases {
		dbAsks = append(dbAsks, fromAsk(&askCases[i]))
	}

	rows, err := getFullRows(dbAsks)
	assert.NoError(t, err)

	collection := askCases[0].Collection
	var res []*mysqlAsk
	sql, vars, err := getSQL(db.WithContext(context.Background()).Table(askTableName).
		Where("collection_class = ? and collection_addr = ? and token_id = ?",
			int(collection.Class), collection.Addr.String(), uint64(askCases[0].TokenID)).
		Order("ask_index asc").Find(&res))
	assert.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(sql)).WithArgs(vars...).WillReturnRows(rows)

	asks, err := r.AskRepo().ListAsks(context.Background(), collection, askCases[0].TokenID)
	assert.NoError(t, err)
	assert.Len(t, asks, len(askCases))
	for i, ask := range asks {
		assert.Equal(t, askCases[i], *ask)
	}
}
