package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rasyon-backend/internal/models"
	"rasyon-backend/internal/money"
	"rasyon-backend/internal/tax"
)

func newTaxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Gelir/kurumlar vergisi ve KDV hesapları",
	}
	cmd.AddCommand(newTaxIncomeCmd(), newTaxVATCmd())
	return cmd
}

func newTaxIncomeCmd() *cobra.Command {
	var (
		profit  float64
		company string
		year    int
	)
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Aylık kâr üzerinden aylık vergi yükü",
		Example: "  rasyonctl tax income --profit 50000 --company sahis --year 2025\n" +
			"  rasyonctl tax income --profit 50000 --company limited",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ct := models.CompanyType(company)
			if !ct.Valid() {
				return fmt.Errorf("geçersiz şirket türü %q (sahis, limited)", company)
			}
			table, err := loadTable()
			if err != nil {
				return err
			}
			yt := table.Year(year)
			monthly := yt.MonthlyIncomeTax(ct, profit)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Vergi yılı:      %d\n", yt.Year)
			fmt.Fprintf(out, "Şirket türü:     %s\n", ct)
			fmt.Fprintf(out, "Aylık kâr:       %s\n", money.Format(profit))
			fmt.Fprintf(out, "Aylık vergi:     %s\n", money.Format(monthly))
			fmt.Fprintf(out, "Yıllık vergi:    %s\n", money.Format(monthly*12))
			fmt.Fprintf(out, "Vergi sonrası:   %s\n", money.Format(profit-monthly))
			if profit > 0 {
				fmt.Fprintf(out, "Efektif oran:    %s\n", money.Percent(monthly/profit*100))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&profit, "profit", 0, "aylık vergi öncesi kâr (TL)")
	cmd.Flags().StringVar(&company, "company", string(models.CompanySoleProprietor), "şirket türü: sahis | limited")
	cmd.Flags().IntVar(&year, "year", models.DefaultTaxYear, "vergi yılı")
	_ = cmd.MarkFlagRequired("profit")
	return cmd
}

func newTaxVATCmd() *cobra.Command {
	var revenue, rate, deductible, carryIn float64
	cmd := &cobra.Command{
		Use:     "vat",
		Short:   "KDV hesabı (hesaplanan, indirilecek, devreden)",
		Example: "  rasyonctl tax vat --revenue 100000 --rate 10 --deductible 6000 --carry-in 1500",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rate < 0 || rate > 100 {
				return fmt.Errorf("KDV oranı 0-100 arasında olmalı")
			}
			r := tax.VAT(revenue, rate, deductible, carryIn)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "KDV oranı:       %s\n", money.Percent(rate))
			fmt.Fprintf(out, "Hesaplanan KDV:  %s\n", money.Format(r.IncomeVAT))
			fmt.Fprintf(out, "İndirilecek KDV: %s\n", money.Format(r.DeductibleVAT))
			fmt.Fprintf(out, "Devreden (giriş):%s\n", money.Format(r.CarryIn))
			fmt.Fprintf(out, "Ödenecek KDV:    %s\n", money.Format(r.Payable))
			fmt.Fprintf(out, "Sonraki aya:     %s\n", money.Format(r.CarryOver))
			return nil
		},
	}
	cmd.Flags().Float64Var(&revenue, "revenue", 0, "KDV hariç satış tutarı (TL)")
	cmd.Flags().Float64Var(&rate, "rate", models.DefaultRevenueVATRate, "satış KDV oranı (%)")
	cmd.Flags().Float64Var(&deductible, "deductible", 0, "indirilecek KDV (TL)")
	cmd.Flags().Float64Var(&carryIn, "carry-in", 0, "önceki aydan devreden KDV (TL)")
	_ = cmd.MarkFlagRequired("revenue")
	return cmd
}
