package mysql

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/modular-market/market/models/repo"
)

func setup(t *testing.T) (repo.Repo, sqlmock.Sqlmock, *sql.DB) {
	sqlDB, mock, err := sqlmock.New()
	assert.NoError(t, err)

	mock.ExpectQuery("SELECT VERSION()").WithArgs().
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(""))

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn: sqlDB,
	}))
	assert.NoError(t, err)

	return MysqlRepo{DB: gormDB}, mock, sqlDB
}

func wrapper(f func(*testing.T, repo.Repo, sqlmock.Sqlmock), r repo.Repo, mock sqlmock.Sqlmock) func(t *testing.T) {
	return func(t *testing.T) {
		f(t, r, mock)
	}
}

func closeDB(mock sqlmock.Sqlmock, sqlDB *sql.DB) error {
	mock.ExpectClose()
	return sqlDB.Close()
}

func getSqliteDryrunDB() (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DryRun: true})
}

func getMysqlDryrunDB() (*gorm.DB, error) {
	sqlDB, _, err := sqlmock.New()
	if err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:                 true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}
	return gormDB, nil
}

// getFullRows renders one or more gorm models into sqlmock rows, one
// column per schema field.
func getFullRows(obj interface{}) (*sqlmock.Rows, error) {
	tmp := make([]interface{}, 0)

	if reflect.TypeOf(obj).Kind() == reflect.Ptr {
		obj = reflect.ValueOf(obj).Elem().Interface()
	}

	objType := reflect.TypeOf(obj)
	objValue := reflect.ValueOf(obj)

	if objType.Kind() == reflect.Slice {
		for i := 0; i < objValue.Len(); i++ {
			tmp = append(tmp, objValue.Index(i).Interface())
		}
	} else {
		tmp = append(tmp, obj)
	}

	if len(tmp) == 0 {
		return nil, fmt.Errorf("values is empty")
	}

	db, err := getSqliteDryrunDB()
	if err != nil {
		return nil, err
	}

	err = db.Statement.Parse(tmp[0])
	if err != nil {
		return nil, err
	}

	schema := db.Statement.Schema
	rows := sqlmock.NewRows(schema.DBNames)
	dict := schema.FieldsByDBName

	for _, stru := range tmp {
		row := make([]driver.Value, 0, len(schema.DBNames))
		rt := reflect.TypeOf(stru)
		rv := reflect.ValueOf(stru)

		if rt.Kind() == reflect.Ptr {
			rt = rt.Elem()
			rv = rv.Elem()
		}

		if rt.Kind() != reflect.Struct {
			return nil, fmt.Errorf("value is not struct")
		}

		for _, dbName := range schema.DBNames {
			field := dict[dbName]
			temp := rv
			for _, path := range field.BindNames {
				temp = temp.FieldByName(path)
			}

			if valuer, ok := temp.Interface().(driver.Valuer); ok {
				v, err := valuer.Value()
				if err != nil {
					return nil, err
				}
				row = append(row, v)
			} else {
				row = append(row, temp.Interface())
			}
		}

		rows.AddRow(row...)
	}
	return rows, nil
}

func getSQL(db *gorm.DB) (sql string, vars []driver.Value, err error) {
	stmt := db.Statement
	sql = stmt.SQL.String()

	vars = make([]driver.Value, 0, len(stmt.Vars))
	for _, v := range stmt.Vars {
		if valuer, ok := v.(driver.Valuer); ok {
			value, err := valuer.Value()
			if err != nil {
				return "", nil, err
			}
			vars = append(vars, value)
			continue
		}
		vars = append(vars, v)
	}

	return sql, vars, nil
}
