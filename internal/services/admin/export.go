package admin

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/magabrotheeeer/safezone/internal/models"
)

const exportSheet = "Usuários"

// ExportTimeLayout — формат даты регистрации в выгрузке.
const ExportTimeLayout = models.DisplayTimeLayout

var exportHeader = []any{"ID", "Nome", "Email", "Bairro", "Admin", "VIP", "Cadastro"}

// ExportUsers возвращает список пользователей в виде книги XLSX.
func (s *Service) ExportUsers(ctx context.Context, actor *models.User) ([]byte, error) {
	const op = "admin.ExportUsers"

	users, err := s.ListUsers(ctx, actor)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), exportSheet); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i, u := range users {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		row := []any{
			u.ID,
			u.Name,
			u.Email,
			u.Neighborhood,
			yesNo(u.IsAdmin),
			yesNo(u.IsVIP),
			u.CreatedAt.Format(ExportTimeLayout),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return buf.Bytes(), nil
}

func yesNo(v bool) string {
	if v {
		return "Sim"
	}
	return "Não"
}
