package vm

import (
	"database/sql"
	"fmt"

	"github.com/skiff-lang/Skiff/source/database"
	"github.com/skiff-lang/Skiff/source/values"
)

// The natives that let Skiff scripts at a database. A connection is a
// handle whose datum is the *sql.DB; closing it empties the datum, and the
// collector closes connections that get dropped on the floor.

func (vm *Vm) installSQLNatives() {
	vm.register("sql-open", []values.Key{n("driver"), n("dsn")}, dispatchSQLOpen, false)
	vm.register("sql-close", []values.Key{n("connection")}, dispatchSQLClose, false)
	vm.register("sql-exec", []values.Key{n("connection"), n("statement"), n("args")}, dispatchSQLExec, false)
	vm.register("sql-query", []values.Key{n("connection"), n("query"), n("args")}, dispatchSQLQuery, false)
	vm.register("sql-drivers", []values.Key{}, dispatchSQLDrivers, false)
	vm.register("hash-password", []values.Key{n("password")}, dispatchHashPassword, false)
	vm.register("check-password", []values.Key{n("hash"), n("password")}, dispatchCheckPassword, false)
}

func dispatchSQLOpen(vm *Vm, lv *Level) Bounce {
	driver := lv.Varlist.VarAt(1)
	if driver.T != values.TEXT {
		*lv.Out = vm.raise(lv, "eval/wrong-type", "text", values.TypeName(driver.T))
		return BOUNCE_DONE
	}
	if !database.IsDriver(driver.V.(string)) {
		*lv.Out = vm.raise(lv, "sql/unknown-driver", driver.V.(string))
		return BOUNCE_DONE
	}
	dsn, problem := vm.connectionString(lv, driver.V.(string), lv.Varlist.VarAt(2))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	db, goErr := database.Open(driver.V.(string), dsn)
	if goErr != nil {
		*lv.Out = vm.raise(lv, "sql/open", goErr)
		return BOUNCE_DONE
	}
	handle := vm.Heap.NewHandle("database", db, nil, closeConnection)
	*lv.Out = values.Value{T: values.HANDLE, V: handle}
	return BOUNCE_DONE
}

// connectionString accepts either a ready-made dsn as text or a block of
// [host port database user password], which it hands to the database
// package to shape the way the driver likes.
func (vm *Vm) connectionString(lv *Level, driver string, v values.Value) (string, values.Value) {
	if v.T == values.TEXT {
		return v.V.(string), values.Value{}
	}
	if v.T != values.BLOCK {
		return "", vm.raise(lv, "sql/bad-dsn")
	}
	ser := v.V.(values.Series)
	if ser.Flex.IsInaccessible() || ser.Flex.Len()-ser.Index != 5 {
		return "", vm.raise(lv, "sql/bad-dsn")
	}
	parts := make([]values.Value, 5)
	for i := range parts {
		parts[i] = ser.Flex.At(ser.Index + i)
	}
	if parts[0].T != values.TEXT || parts[1].T != values.INTEGER ||
		parts[2].T != values.TEXT || parts[3].T != values.TEXT ||
		parts[4].T != values.TEXT {
		return "", vm.raise(lv, "sql/bad-dsn")
	}
	return database.ConnectionString(driver, parts[0].V.(string), parts[1].V.(int),
		parts[2].V.(string), parts[3].V.(string), parts[4].V.(string)), values.Value{}
}

func closeConnection(hd *values.Handle) {
	if db, ok := hd.Datum.(*sql.DB); ok && db != nil {
		db.Close()
	}
}

// connectionOf unwraps a connection argument, raising for things that are
// not database handles and for connections already closed.
func (vm *Vm) connectionOf(lv *Level, v values.Value) (*sql.DB, values.Value) {
	if v.T != values.HANDLE {
		return nil, vm.raise(lv, "sql/bad-handle", values.TypeName(v.T))
	}
	hd := v.V.(*values.Handle)
	if hd.Name != "database" {
		return nil, vm.raise(lv, "sql/bad-handle", hd.Name)
	}
	db, ok := hd.Datum.(*sql.DB)
	if !ok || db == nil {
		return nil, vm.raise(lv, "sql/closed")
	}
	return db, values.Value{}
}

func dispatchSQLClose(vm *Vm, lv *Level) Bounce {
	db, problem := vm.connectionOf(lv, lv.Varlist.VarAt(1))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	db.Close()
	lv.Varlist.VarAt(1).V.(*values.Handle).Datum = nil
	*lv.Out = values.VOID_V
	return BOUNCE_DONE
}

// sqlArgs turns a block of Skiff cells into driver arguments. A blank is
// the way to pass SQL null, since a block can't hold a null antiform.
func (vm *Vm) sqlArgs(lv *Level, v values.Value) ([]any, values.Value) {
	ser, problem := vm.wantBlock(lv, v)
	if problem.T == values.RAISED {
		return nil, problem
	}
	goArgs := make([]any, 0, ser.Flex.Len()-ser.Index)
	for i := ser.Index; i < ser.Flex.Len(); i++ {
		cell := ser.Flex.At(i)
		switch cell.T {
		case values.BLANK:
			goArgs = append(goArgs, nil)
		case values.INTEGER:
			goArgs = append(goArgs, cell.V.(int))
		case values.DECIMAL:
			goArgs = append(goArgs, cell.V.(float64))
		case values.TEXT:
			goArgs = append(goArgs, cell.V.(string))
		case values.LOGIC:
			goArgs = append(goArgs, cell.V.(bool))
		default:
			return nil, vm.raise(lv, "eval/wrong-type", "scalar", values.TypeName(cell.T))
		}
	}
	return goArgs, values.Value{}
}

func dispatchSQLExec(vm *Vm, lv *Level) Bounce {
	db, problem := vm.connectionOf(lv, lv.Varlist.VarAt(1))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	statement := lv.Varlist.VarAt(2)
	if statement.T != values.TEXT {
		*lv.Out = vm.raise(lv, "eval/wrong-type", "text", values.TypeName(statement.T))
		return BOUNCE_DONE
	}
	goArgs, problem := vm.sqlArgs(lv, lv.Varlist.VarAt(3))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	result, goErr := db.Exec(statement.V.(string), goArgs...)
	if goErr != nil {
		*lv.Out = vm.raise(lv, "sql/exec", goErr)
		return BOUNCE_DONE
	}
	affected, goErr := result.RowsAffected()
	if goErr != nil {
		affected = 0
	}
	*lv.Out = values.Value{T: values.INTEGER, V: int(affected)}
	return BOUNCE_DONE
}

// dispatchSQLQuery gives back the rows as a block of blocks of cells.
func dispatchSQLQuery(vm *Vm, lv *Level) Bounce {
	db, problem := vm.connectionOf(lv, lv.Varlist.VarAt(1))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	query := lv.Varlist.VarAt(2)
	if query.T != values.TEXT {
		*lv.Out = vm.raise(lv, "eval/wrong-type", "text", values.TypeName(query.T))
		return BOUNCE_DONE
	}
	goArgs, problem := vm.sqlArgs(lv, lv.Varlist.VarAt(3))
	if problem.T == values.RAISED {
		*lv.Out = problem
		return BOUNCE_DONE
	}
	rows, goErr := db.Query(query.V.(string), goArgs...)
	if goErr != nil {
		*lv.Out = vm.raise(lv, "sql/query", goErr)
		return BOUNCE_DONE
	}
	defer rows.Close()
	columns, goErr := rows.Columns()
	if goErr != nil {
		*lv.Out = vm.raise(lv, "sql/query", goErr)
		return BOUNCE_DONE
	}
	out := []values.Value{}
	for rows.Next() {
		fields := make([]any, len(columns))
		pointerList := make([]any, len(columns))
		for i := range fields {
			pointerList[i] = &fields[i]
		}
		if goErr := rows.Scan(pointerList...); goErr != nil {
			*lv.Out = vm.raise(lv, "sql/query", goErr)
			return BOUNCE_DONE
		}
		cells := make([]values.Value, 0, len(fields))
		for _, f := range fields {
			cells = append(cells, sqlValue(f))
		}
		out = append(out, vm.Heap.NewBlock(cells...))
	}
	if goErr := rows.Err(); goErr != nil {
		*lv.Out = vm.raise(lv, "sql/query", goErr)
		return BOUNCE_DONE
	}
	*lv.Out = vm.Heap.NewBlock(out...)
	return BOUNCE_DONE
}

// sqlValue maps what a driver scanned into a Skiff cell. Drivers disagree
// about text, some handing back bytes, so both spellings are here.
func sqlValue(f any) values.Value {
	switch goValue := f.(type) {
	case nil:
		return values.BLANK_V
	case int64:
		return values.Value{T: values.INTEGER, V: int(goValue)}
	case float64:
		return values.Value{T: values.DECIMAL, V: goValue}
	case bool:
		return values.MakeLogic(goValue)
	case []byte:
		return values.Value{T: values.TEXT, V: string(goValue)}
	case string:
		return values.Value{T: values.TEXT, V: goValue}
	default:
		return values.Value{T: values.TEXT, V: fmt.Sprint(goValue)}
	}
}

func dispatchSQLDrivers(vm *Vm, lv *Level) Bounce {
	names := database.GetSortedDrivers()
	cells := make([]values.Value, 0, len(names))
	for _, name := range names {
		cells = append(cells, values.Value{T: values.TEXT, V: name})
	}
	*lv.Out = vm.Heap.NewBlock(cells...)
	return BOUNCE_DONE
}

func dispatchHashPassword(vm *Vm, lv *Level) Bounce {
	password := lv.Varlist.VarAt(1)
	if password.T != values.TEXT {
		*lv.Out = vm.raise(lv, "eval/wrong-type", "text", values.TypeName(password.T))
		return BOUNCE_DONE
	}
	hash, goErr := database.HashPassword(password.V.(string))
	if goErr != nil {
		*lv.Out = vm.raise(lv, "crypt/hash", goErr)
		return BOUNCE_DONE
	}
	*lv.Out = values.Value{T: values.TEXT, V: hash}
	return BOUNCE_DONE
}

func dispatchCheckPassword(vm *Vm, lv *Level) Bounce {
	hash := lv.Varlist.VarAt(1)
	password := lv.Varlist.VarAt(2)
	if hash.T != values.TEXT || password.T != values.TEXT {
		*lv.Out = vm.raise(lv, "eval/wrong-type", "text", values.TypeName(hash.T))
		return BOUNCE_DONE
	}
	*lv.Out = values.MakeLogic(database.CheckPassword(hash.V.(string), password.V.(string)))
	return BOUNCE_DONE
}
