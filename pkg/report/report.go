// Package report renders a ledger snapshot as an xlsx workbook with one sheet
// each for farmers, pools and staker positions.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"farmyield/pkg/ledger/service"
)

const (
	SheetSummary   = "Summary"
	SheetFarmers   = "Farmers"
	SheetPools     = "Pools"
	SheetPositions = "Positions"
)

func WriteLedger(w io.Writer, snap *service.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1"; rename it rather than leave it empty.
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetFarmers, SheetPools, SheetPositions} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}

	var staked uint64
	for _, p := range snap.Pools {
		staked += p.TotalStaked
	}
	summary := [][]any{
		{"Height", snap.Height},
		{"Farmers", len(snap.Farmers)},
		{"Pools", len(snap.Pools)},
		{"Positions", len(snap.Positions)},
		{"Total staked", staked},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}

	farmers := [][]any{{"Farmer ID", "Address", "Active", "Total land (acres)", "Crop", "Yield estimate (bushels)", "Registered at"}}
	for _, fm := range snap.Farmers {
		farmers = append(farmers, []any{fm.FarmerID, fm.Address, fm.Active, fm.TotalLand, fm.CropType, fm.YieldEstimate, fm.RegisteredAt})
	}
	if err := writeRows(f, SheetFarmers, farmers); err != nil {
		return err
	}

	pools := [][]any{{"Pool ID", "Farmer ID", "APY (bps)", "Min stake", "Total staked", "Status", "End height"}}
	for _, p := range snap.Pools {
		var end any = ""
		if p.EndHeight != nil {
			end = *p.EndHeight
		}
		pools = append(pools, []any{p.PoolID, p.FarmerID, p.APY, p.MinStake, p.TotalStaked, p.Status(), end})
	}
	if err := writeRows(f, SheetPools, pools); err != nil {
		return err
	}

	positions := [][]any{{"Staker", "Pool ID", "Staked", "Settled rewards", "Pending rewards", "Last claim height"}}
	for _, pv := range snap.Positions {
		positions = append(positions, []any{pv.Staker, pv.PoolID, pv.StakedAmount, pv.Rewards.String(), pv.Pending.String(), pv.LastClaimHeight})
	}
	if err := writeRows(f, SheetPositions, positions); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
