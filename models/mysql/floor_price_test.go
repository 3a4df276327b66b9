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

func TestFloorPriceRepo(t *testing.T) {
	r, mock, sqlDB := setup(t)

	t.Run("mysql test SetFloorPrice", wrapper(testSetFloorPrice, r, mock))
	t.Run("mysql test GetFloorPrice", wrapper(testGetFloorPrice, r, mock))

	assert.NoError(t, closeDB(mock, sqlDB))
}

func floorPriceCase() *types.FloorPrice {
	return &types.FloorPrice{
		Collection: types.NewCollection(types.ClassUnique, "0xc011ec7721"),
		Currency:   "0xc04417",
		Price:      types.NewAmount(10),
	}
}

func testSetFloorPrice(t *testing.T, r repo.Repo, mock sqlmock.Sqlmock) {
	db, err := getMysqlDryrunDB()
	assert.NoError(t, err)

	fp := floorPriceCase()
	dbFp := fromFloorPrice(fp)

	sql, vars, err := getSQL(db.WithContext(context.Background()).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "collection_class"}, {Name: "collection_addr"}, {Name: "currency"},
		},
		UpdateAll: true,
	}).Save(dbFp))
	assert.NoError(t, err)

	vars[len(vars)-1] = sqlmock.AnyArg()
	vars[len(vars)-2] = sqlmock.AnyArg()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(sql)).WithArgs(vars...).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	assert.NoError(t, r.FloorPriceRepo().SetFloorPrice(context.Background(), fp))
}

func testGetFloorPrice(t *testing.T, r repo.Repo, mock sqlmock.Sqlmock) {
	fp := floorPriceCase()
	dbFp := fromFloorPrice(fp)

	db, err := getMysqlDryrunDB()
	assert.NoError(t, err)

	rows, err := getFullRows(dbFp)
	assert.NoError(t, err)

	sql, vars, err := getSQL(db.WithContext(context.Background()).Take(&dbFp,
		"collection_class = ? and collection_addr = ? and currency = ?",
		dbFp.CollectionClass, dbFp.CollectionAddr, dbFp.Currency))
	assert.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(sql)).WithArgs(vars...).WillReturnRows(rows)

	res, err := r.FloorPriceRepo().GetFloorPrice(context.Background(), fp.Collection, fp.Currency)
	assert.NoError(t, err)
	assert.Equal(t, fp, res)
}
