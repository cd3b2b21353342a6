package memstore

import (
	"context"
	"fmt"
	"time"

	"github.com/tendant/inspection-idm/pkg/account"
	"github.com/tendant/inspection-idm/pkg/provisioning"
)

type writer struct {
	t *tables
}

func (w *writer) EmailTaken(_ context.Context, email string) (bool, error) {
	for _, a := range w.t.accounts {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (w *writer) CompanyNameTaken(_ context.Context, name string) (bool, error) {
	for _, c := range w.t.companies {
		if c.name == name {
			return true, nil
		}
	}
	return false, nil
}

func (w *writer) CompanyExists(_ context.Context, companyID int64) (bool, error) {
	_, ok := w.t.companies[companyID]
	return ok, nil
}

func (w *writer) CityExists(_ context.Context, cityID int64) (bool, error) {
	_, ok := w.t.cities[cityID]
	return ok, nil
}

func (w *writer) InsertAccount(ctx context.Context, a provisioning.NewAccount) (int64, error) {
	if taken, _ := w.EmailTaken(ctx, a.Email); taken {
		return 0, provisioning.ErrEmailTaken
	}
	now := time.Now().UTC()
	id := w.t.nextID()
	w.t.accounts[id] = account.Account{
		ID:          id,
		Role:        a.Role,
		Email:       a.Email,
		Password:    a.Password,
		CreatedAt:   now,
		LastVisitAt: now,
	}
	return id, nil
}

func (w *writer) InsertQuestionnaire(_ context.Context) (int64, error) {
	id := w.t.nextID()
	w.t.questionnaires[id] = time.Now().UTC()
	return id, nil
}

func (w *writer) InsertCompany(ctx context.Context, name string, questionnaireID int64) (int64, error) {
	if taken, _ := w.CompanyNameTaken(ctx, name); taken {
		return 0, provisioning.ErrCompanyNameTaken
	}
	if _, ok := w.t.questionnaires[questionnaireID]; !ok {
		return 0, fmt.Errorf("insert company: questionnaire %d does not exist", questionnaireID)
	}
	id := w.t.nextID()
	w.t.companies[id] = company{name: name, questionnaireID: questionnaireID}
	return id, nil
}

func (w *writer) InsertPhone(_ context.Context, number string) (int64, error) {
	id := w.t.nextID()
	w.t.phones[id] = number
	return id, nil
}

func (w *writer) requireAccount(id int64) error {
	if _, ok := w.t.accounts[id]; !ok {
		return fmt.Errorf("account %d does not exist", id)
	}
	return nil
}

func (w *writer) InsertInspector(_ context.Context, row provisioning.InspectorRow) error {
	if err := w.requireAccount(row.AccountID); err != nil {
		return fmt.Errorf("insert inspector: %w", err)
	}
	if _, ok := w.t.inspectors[row.AccountID]; ok {
		return fmt.Errorf("insert inspector: duplicate key %d", row.AccountID)
	}
	w.t.inspectors[row.AccountID] = row
	return nil
}

func (w *writer) InsertAdministrator(_ context.Context, row provisioning.AdministratorRow) error {
	if err := w.requireAccount(row.AccountID); err != nil {
		return fmt.Errorf("insert company contact: %w", err)
	}
	for _, c := range w.t.contacts {
		if c.CompanyID == row.CompanyID {
			return fmt.Errorf("insert company contact: company %d already has a contact", row.CompanyID)
		}
	}
	w.t.contacts[row.AccountID] = row
	return nil
}

func (w *writer) InsertManager(_ context.Context, row provisioning.ManagerRow) error {
	if err := w.requireAccount(row.AccountID); err != nil {
		return fmt.Errorf("insert company employee: %w", err)
	}
	if _, ok := w.t.cities[row.CityID]; !ok {
		return fmt.Errorf("insert company employee: city %d does not exist", row.CityID)
	}
	w.t.employees[row.AccountID] = row
	return nil
}

func (w *writer) InsertCompanyInspector(_ context.Context, companyID, inspectorID int64) error {
	if _, ok := w.t.inspectors[inspectorID]; !ok {
		return fmt.Errorf("insert company inspector: inspector %d does not exist", inspectorID)
	}
	w.t.companyInspectors[[2]int64{companyID, inspectorID}] = struct{}{}
	return nil
}
