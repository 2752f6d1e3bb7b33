package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/domain/finance"
	"github.com/jobh/imoveis/internal/domain/models"
)

// Line is a described amount on a printed document.
type Line struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Receipt is the tenant's payment slip. It never shows the administrative fee.
type Receipt struct {
	Company      Company         `json:"company"`
	Rental       models.Rental   `json:"rental"`
	Period       models.Period   `json:"period"`
	DueDate      time.Time       `json:"dueDate"`
	Lines        []Line          `json:"lines"`
	Total        decimal.Decimal `json:"total"`
	PixPayload   string          `json:"pixPayload,omitempty"`
	QRCodeBase64 string          `json:"qrCodeBase64,omitempty"`
	IssuedAt     time.Time       `json:"issuedAt"`
}

// StatementRequest selects what goes into an owner statement.
type StatementRequest struct {
	OwnerID   string
	Period    models.Period
	RentalIDs []string
	Notes     string
}

// StatementCard is the account of one rental in an owner statement.
type StatementCard struct {
	Rental      models.Rental     `json:"rental"`
	Credits     []Line            `json:"credits"`
	BankFeeItem *models.LineItem  `json:"bankFeeItem,omitempty"`
	OwnerItems  []models.LineItem `json:"ownerItems"`
	Breakdown   finance.Breakdown `json:"breakdown"`
}

// Statement is the monthly account rendered for an owner.
type Statement struct {
	Company         Company         `json:"company"`
	Owner           models.Owner    `json:"owner"`
	Period          models.Period   `json:"period"`
	Cards           []StatementCard `json:"cards"`
	TotalGross      decimal.Decimal `json:"totalGross"`
	TotalAdminFee   decimal.Decimal `json:"totalAdminFee"`
	TotalBankFee    decimal.Decimal `json:"totalBankFee"`
	TotalOwnerItems decimal.Decimal `json:"totalOwnerItems"`
	Balance         decimal.Decimal `json:"balance"`
	Notes           string          `json:"notes,omitempty"`
	IssuedAt        time.Time       `json:"issuedAt"`
}

// RepasseRow is one rental on the transfer list.
type RepasseRow struct {
	RentalID string          `json:"rentalId"`
	Ref      string          `json:"ref"`
	Tenant   string          `json:"tenant"`
	Rent     decimal.Decimal `json:"rent"`
	Charges  decimal.Decimal `json:"charges"`
	Gross    decimal.Decimal `json:"gross"`
	AdminFee decimal.Decimal `json:"adminFee"`
	Net      decimal.Decimal `json:"net"`
}

// RepasseTotals adds up transfer list rows.
type RepasseTotals struct {
	Rent     decimal.Decimal `json:"rent"`
	Charges  decimal.Decimal `json:"charges"`
	Gross    decimal.Decimal `json:"gross"`
	AdminFee decimal.Decimal `json:"adminFee"`
	Net      decimal.Decimal `json:"net"`
}

func (t *RepasseTotals) add(r RepasseRow) {
	t.Rent = t.Rent.Add(r.Rent)
	t.Charges = t.Charges.Add(r.Charges)
	t.Gross = t.Gross.Add(r.Gross)
	t.AdminFee = t.AdminFee.Add(r.AdminFee)
	t.Net = t.Net.Add(r.Net)
}

// RepasseGroup holds the rows of one owner.
type RepasseGroup struct {
	OwnerID     string        `json:"ownerId"`
	OwnerName   string        `json:"ownerName"`
	BankDetails string        `json:"bankDetails,omitempty"`
	PixKey      string        `json:"pixKey,omitempty"`
	Rows        []RepasseRow  `json:"rows"`
	Totals      RepasseTotals `json:"totals"`
}

// RepasseList is the transfer list of a period grouped by owner.
type RepasseList struct {
	Period models.Period  `json:"period"`
	Groups []RepasseGroup `json:"groups"`
	Totals RepasseTotals  `json:"totals"`
}

// Receipt builds the tenant slip of a rental: rent, the fixed charges above zero and every
// non-zero tenant item, totalling the engine's gross total.
func (s *Service) Receipt(ctx context.Context, rentalID string) (Receipt, error) {
	rental, err := s.store.GetRental(ctx, rentalID)
	if err != nil {
		return Receipt{}, err
	}
	owners, err := s.store.ListOwners(ctx)
	if err != nil {
		return Receipt{}, fmt.Errorf("list owners: %w", err)
	}
	company, pix, err := s.companyInfo(ctx)
	if err != nil {
		return Receipt{}, err
	}

	b := finance.ComputeFor(rental, owners)
	p := rental.Period()

	lines := make([]Line, 0, 5+len(rental.OtherItems))
	addLine := func(desc string, amount decimal.Decimal) {
		if !amount.IsZero() {
			lines = append(lines, Line{Description: desc, Amount: amount})
		}
	}
	addLine(receiptRentLabel(rental), rental.RentAmount)
	for _, c := range fixedCharges(rental, "Conta de Água", "Taxa de Condomínio", "IPTU", "Conta de Gás") {
		addLine(c.Description, c.Amount)
	}
	for _, item := range rental.OtherItems {
		addLine(item.Description, item.Amount)
	}

	receipt := Receipt{
		Company:    company,
		Rental:     rental,
		Period:     p,
		DueDate:    p.DueDate(rental.DueDay, s.loc),
		Lines:      lines,
		Total:      b.GrossTotal,
		PixPayload: PixPayload(pix),
		IssuedAt:   s.now().In(s.loc),
	}
	if pix != nil {
		receipt.QRCodeBase64 = pix.QRCodeBase64
	}
	return receipt, nil
}

func receiptRentLabel(r models.Rental) string {
	if r.RentDescription != "" && r.RentDescription != "Aluguel" {
		return r.RentDescription
	}
	return fmt.Sprintf("Aluguel Ref. %s/%d", r.Month, r.Year)
}

// fixedCharges returns water, condo, IPTU and gas with the given labels, skipping those
// not above zero.
func fixedCharges(r models.Rental, water, condo, iptu, gas string) []Line {
	all := []Line{
		{Description: water, Amount: r.WaterBill},
		{Description: condo, Amount: r.CondoFee},
		{Description: iptu, Amount: r.IPTU},
		{Description: gas, Amount: r.GasBill},
	}
	out := make([]Line, 0, len(all))
	for _, l := range all {
		if l.Amount.IsPositive() {
			out = append(out, l)
		}
	}
	return out
}

// OwnerStatement builds the account of an owner for a period. Without rental ids every
// rental of the owner in the period is included. The balance is the sum of net transfers.
// Without notes the stored statement notes are used.
func (s *Service) OwnerStatement(ctx context.Context, req StatementRequest) (Statement, error) {
	owner, err := s.store.GetOwner(ctx, req.OwnerID)
	if err != nil {
		return Statement{}, err
	}
	filter := req.Period.Filter()
	filter.OwnerID = req.OwnerID
	rentals, owners, err := s.load(ctx, filter)
	if err != nil {
		return Statement{}, err
	}
	rentals = selectRentals(rentals, req.RentalIDs)
	if len(rentals) == 0 {
		return Statement{}, fmt.Errorf("%w: owner %s has no rentals in %s", ErrNoRentals, owner.Name, req.Period)
	}
	company, pix, err := s.companyInfo(ctx)
	if err != nil {
		return Statement{}, err
	}
	notes := req.Notes
	if notes == "" && pix != nil {
		notes = pix.StatementNotes
	}

	idx := finance.IndexOwners(owners)
	st := Statement{
		Company:  company,
		Owner:    owner,
		Period:   req.Period,
		Cards:    make([]StatementCard, 0, len(rentals)),
		Notes:    notes,
		IssuedAt: s.now().In(s.loc),
	}
	for _, r := range rentals {
		b := finance.Compute(r, idx.Rate(r))
		card := StatementCard{Rental: r, OwnerItems: r.OwnerItems, Breakdown: b}

		rentLabel := r.RentDescription
		if rentLabel == "" {
			rentLabel = "Aluguel Recebido"
		}
		card.Credits = append(card.Credits, Line{Description: rentLabel, Amount: r.RentAmount})
		card.Credits = append(card.Credits, fixedCharges(r, "Água", "Condomínio", "IPTU", "Gás")...)
		for i, item := range r.OtherItems {
			if b.BankFeeItemID != "" && item.ID == b.BankFeeItemID && card.BankFeeItem == nil {
				card.BankFeeItem = &r.OtherItems[i]
			}
			card.Credits = append(card.Credits, Line{Description: item.Description, Amount: item.Amount})
		}

		st.Cards = append(st.Cards, card)
		st.TotalGross = st.TotalGross.Add(b.GrossTotal)
		st.TotalAdminFee = st.TotalAdminFee.Add(b.AdministrativeFee)
		st.TotalBankFee = st.TotalBankFee.Add(b.BankFee)
		st.TotalOwnerItems = st.TotalOwnerItems.Add(b.OwnerItemsTotal)
		st.Balance = st.Balance.Add(b.NetTransfer)
	}
	return st, nil
}

// RepasseList builds the transfer list of a period grouped by owner. Without rental ids
// every rental of the period is included.
func (s *Service) RepasseList(ctx context.Context, p models.Period, rentalIDs []string) (RepasseList, error) {
	rentals, owners, err := s.load(ctx, p.Filter())
	if err != nil {
		return RepasseList{}, err
	}
	rentals = selectRentals(rentals, rentalIDs)
	if len(rentals) == 0 {
		return RepasseList{}, fmt.Errorf("%w: %s", ErrNoRentals, p)
	}

	idx := finance.IndexOwners(owners)
	list := RepasseList{Period: p}
	groupAt := make(map[string]int)
	for _, r := range rentals {
		i, ok := groupAt[r.OwnerID]
		if !ok {
			g := RepasseGroup{OwnerID: r.OwnerID, OwnerName: unknownOwnerName}
			if o, found := idx[r.OwnerID]; found {
				g.OwnerName, g.BankDetails, g.PixKey = o.Name, o.BankDetails, o.PixKey
			}
			list.Groups = append(list.Groups, g)
			i = len(list.Groups) - 1
			groupAt[r.OwnerID] = i
		}

		b := finance.Compute(r, idx.Rate(r))
		row := RepasseRow{
			RentalID: r.ID,
			Ref:      r.RefNumber,
			Tenant:   r.TenantName,
			Rent:     r.RentAmount,
			Charges:  b.ChargesTotal.Add(b.OtherItemsTotal),
			Gross:    b.GrossTotal,
			AdminFee: b.AdministrativeFee,
			Net:      b.NetTransfer,
		}
		list.Groups[i].Rows = append(list.Groups[i].Rows, row)
		list.Groups[i].Totals.add(row)
		list.Totals.add(row)
	}
	return list, nil
}

// ExportRepasse writes the transfer list into the configured spreadsheet.
func (s *Service) ExportRepasse(ctx context.Context, list RepasseList) error {
	if s.sheets == nil {
		return ErrSheetsDisabled
	}

	if err := s.sheets.ReplaceRange(ctx, repasseSheetRange, repasseRows(list)); err != nil {
		return fmt.Errorf("export repasse %s: %w", list.Period, err)
	}
	s.logger.Info("repasse exported", zap.Stringer("period", list.Period), zap.Int("owners", len(list.Groups)))
	return nil
}

func repasseRows(list RepasseList) [][]interface{} {
	money := func(d decimal.Decimal) interface{} { return d.Round(2).InexactFloat64() }

	rows := [][]interface{}{
		{"Lista de Repasse", list.Period.String()},
		{"Proprietário", "Ref.", "Inquilino", "Aluguel", "Encargos", "Total Geral", "Tx. Adm.", "Total Repasse"},
	}
	for _, g := range list.Groups {
		for _, r := range g.Rows {
			rows = append(rows, []interface{}{g.OwnerName, r.Ref, r.Tenant, money(r.Rent), money(r.Charges), money(r.Gross), money(r.AdminFee), money(r.Net)})
		}
		t := g.Totals
		rows = append(rows, []interface{}{"Total " + g.OwnerName, "", "", money(t.Rent), money(t.Charges), money(t.Gross), money(t.AdminFee), money(t.Net)})
	}
	t := list.Totals
	rows = append(rows, []interface{}{"Total Geral", "", "", money(t.Rent), money(t.Charges), money(t.Gross), money(t.AdminFee), money(t.Net)})
	return rows
}
