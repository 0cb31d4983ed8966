package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"budgetly/internal/events"
	"budgetly/internal/models"
	"budgetly/internal/testutil"
)

func validExpenseInput() ExpenseInput {
	return ExpenseInput{
		Date:        "2024-03-15",
		Category:    "Food",
		Amount:      testutil.FloatPtr(42.5),
		Description: "groceries",
	}
}

func TestCreateExpense(t *testing.T) {
	t.Run("valid_with_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		rec := &events.Recorder{}
		svc := NewExpenseService(db, rec)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, true)

		input := validExpenseInput()
		input.BudgetID = &budget.ID
		expense, err := svc.CreateExpense(user.ID, input)
		testutil.AssertNoError(t, err)

		if expense.ID == 0 {
			t.Fatal("expected non-zero expense ID")
		}
		if expense.BudgetID == nil || *expense.BudgetID != budget.ID {
			t.Errorf("expected budget %d, got %v", budget.ID, expense.BudgetID)
		}
		if !expense.Date.Equal(testutil.Date(2024, 3, 15)) {
			t.Errorf("expected date 2024-03-15, got %v", expense.Date)
		}
		if types := rec.Types(); len(types) != 1 || types[0] != events.ExpenseCreated {
			t.Errorf("expected one expense.created event, got %v", types)
		}
	})

	t.Run("description_defaults_to_empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil)
		user := testutil.CreateTestUser(t, db)

		input := validExpenseInput()
		input.Description = ""
		expense, err := svc.CreateExpense(user.ID, input)
		testutil.AssertNoError(t, err)

		var stored models.Expense
		testutil.AssertNoError(t, db.First(&stored, expense.ID).Error)
		if stored.Description != "" || stored.BudgetID != nil {
			t.Errorf("expected empty description and no budget, got %+v", stored)
		}
	})

	t.Run("zero_budget_id_means_none", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil)
		user := testutil.CreateTestUser(t, db)

		input := validExpenseInput()
		input.BudgetID = testutil.UintPtr(0)
		expense, err := svc.CreateExpense(user.ID, input)
		testutil.AssertNoError(t, err)
		if expense.BudgetID != nil {
			t.Errorf("expected no budget, got %d", *expense.BudgetID)
		}
	})

	t.Run("own_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestCategory(t, db, user.ID, "Pets")

		input := validExpenseInput()
		input.Category = "Pets"
		_, err := svc.CreateExpense(user.ID, input)
		testutil.AssertNoError(t, err)
	})

	type foreign struct {
		budgetID uint
		category string
	}

	failures := []struct {
		name    string
		mutate  func(in *ExpenseInput, f foreign)
		code    string
		message string
	}{
		{"missing_date", func(in *ExpenseInput, _ foreign) { in.Date = "" }, "INVALID_INPUT", "Date, category, and amount are required"},
		{"missing_amount", func(in *ExpenseInput, _ foreign) { in.Amount = nil }, "INVALID_INPUT", "Date, category, and amount are required"},
		{"zero_amount", func(in *ExpenseInput, _ foreign) { in.Amount = testutil.FloatPtr(0) }, "INVALID_INPUT", "Amount must be greater than 0"},
		{"negative_amount", func(in *ExpenseInput, _ foreign) { in.Amount = testutil.FloatPtr(-3) }, "INVALID_INPUT", "Amount must be greater than 0"},
		{"bad_date", func(in *ExpenseInput, _ foreign) { in.Date = "yesterday" }, "INVALID_INPUT", "Invalid date format"},
		{"long_description", func(in *ExpenseInput, _ foreign) { in.Description = strings.Repeat("x", 501) }, "INVALID_INPUT", "Description is too long"},
		{"unknown_category", func(in *ExpenseInput, _ foreign) { in.Category = "Yachts" }, "INVALID_CATEGORY", "Invalid category"},
		{"foreign_category", func(in *ExpenseInput, f foreign) { in.Category = f.category }, "INVALID_CATEGORY", "Invalid category"},
		{"foreign_budget", func(in *ExpenseInput, f foreign) { in.BudgetID = &f.budgetID }, "INVALID_BUDGET", "Invalid budget"},
		{"missing_budget", func(in *ExpenseInput, _ foreign) { in.BudgetID = testutil.UintPtr(999) }, "INVALID_BUDGET", "Invalid budget"},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)
			svc := NewExpenseService(db, nil)
			user := testutil.CreateTestUser(t, db)
			other := testutil.CreateTestUser(t, db)
			foreignBudget := testutil.CreateTestBudget(t, db, other.ID, true)
			foreignCategory := testutil.CreateTestCategory(t, db, other.ID, "Boats")

			input := validExpenseInput()
			tt.mutate(&input, foreign{budgetID: foreignBudget.ID, category: foreignCategory.Name})

			_, err := svc.CreateExpense(user.ID, input)
			testutil.AssertAppErrorMessage(t, err, tt.code, tt.message)

			var count int64
			db.Model(&models.Expense{}).Count(&count)
			if count != 0 {
				t.Errorf("expected no expense to be stored, found %d", count)
			}
		})
	}
}

func TestGetUserExpenses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db, nil)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID, true)

	march := testutil.CreateTestExpenseOn(t, db, user.ID, testutil.Date(2024, 3, 1), "Food", 10, &budget.ID)
	mayFirst := testutil.CreateTestExpenseOn(t, db, user.ID, testutil.Date(2024, 5, 1), "Food", 20, nil)
	maySecond := testutil.CreateTestExpenseOn(t, db, user.ID, testutil.Date(2024, 5, 1), "Shopping", 30, nil)
	testutil.CreateTestExpense(t, db, other.ID, "Food", 99, nil)

	expenses, err := svc.GetUserExpenses(user.ID)
	testutil.AssertNoError(t, err)

	if len(expenses) != 3 {
		t.Fatalf("expected 3 expenses, got %d", len(expenses))
	}
	wantOrder := []uint{maySecond.ID, mayFirst.ID, march.ID}
	for i, id := range wantOrder {
		if expenses[i].ID != id {
			t.Errorf("position %d: expected expense %d, got %d", i, id, expenses[i].ID)
		}
	}
	if expenses[2].BudgetName == nil || *expenses[2].BudgetName != budget.Name {
		t.Errorf("expected budget name %q, got %v", budget.Name, expenses[2].BudgetName)
	}
	if expenses[0].BudgetName != nil {
		t.Errorf("expected no budget name, got %q", *expenses[0].BudgetName)
	}
}

func TestDeleteExpense(t *testing.T) {
	t.Run("then_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		rec := &events.Recorder{}
		svc := NewExpenseService(db, rec)
		user := testutil.CreateTestUser(t, db)
		expense := testutil.CreateTestExpense(t, db, user.ID, "Food", 10, nil)

		testutil.AssertNoError(t, svc.DeleteExpense(user.ID, expense.ID))

		err := svc.DeleteExpense(user.ID, expense.ID)
		testutil.AssertAppErrorMessage(t, err, "EXPENSE_NOT_FOUND", "Expense not found or not authorized")

		if types := rec.Types(); len(types) != 1 || types[0] != events.ExpenseDeleted {
			t.Errorf("expected one expense.deleted event, got %v", types)
		}
	})

	t.Run("foreign_expense", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db, nil)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)
		expense := testutil.CreateTestExpense(t, db, owner.ID, "Food", 10, nil)

		err := svc.DeleteExpense(intruder.ID, expense.ID)
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")

		var count int64
		db.Model(&models.Expense{}).Where("id = ?", expense.ID).Count(&count)
		if count != 1 {
			t.Error("expected owner's expense to survive")
		}
	})
}

func TestExportExpenses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewExpenseService(db, nil)
	user := testutil.CreateTestUser(t, db)
	budget := testutil.CreateTestBudget(t, db, user.ID, true)
	testutil.CreateTestExpenseOn(t, db, user.ID, testutil.Date(2024, 2, 3), "Food", 12.5, &budget.ID)

	data, err := svc.ExportExpenses(user.ID)
	testutil.AssertNoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("export is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	testutil.AssertNoError(t, err)

	if len(rows) != 2 {
		t.Fatalf("expected header and one row, got %d rows", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][4] != "Budget" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "2024-02-03" || rows[1][1] != "Food" || rows[1][2] != "12.5" || rows[1][4] != budget.Name {
		t.Errorf("unexpected data row %v", rows[1])
	}
}
