package seed

import "github.com/xiebiao/winestock/internal/application/validation"

// sampleWine 示例酒款及期初库存
type sampleWine struct {
	validation.WineInput
	Opening int
}

// sampleMovement 示例流水
type sampleMovement struct {
	Code     string
	Kind     string
	Quantity int
	Price    string
}

var sampleWines = []sampleWine{
	{wine("Catena Zapata Malbec", "Catena Zapata", 2019, "Mendoza, Argentina", "malbec", "red", "still", "AR-MALB-001", "65.23", "20.50", 0), 2},
	{wine("Don Melchor Cabernet Sauvignon", "Concha y Toro", 2020, "Puente Alto, Chile", "cabernet sauvignon", "red", "still", "CL-CABS-001", "55.00", "30.00", 0), 0},
	{wine("Norton Reserva Malbec", "Bodega Norton", 2021, "Mendoza, Argentina", "malbec", "red", "still", "AR-MALB-002", "22.00", "12.00", 0), 0},
	{wine("Susana Balbo Crios Torrontés", "Susana Balbo Wines", 2022, "Cafayate, Argentina", "torrontés", "white", "still", "AR-TORR-001", "17.00", "9.50", 0), 0},
	{wine("Martini Asti Spumante", "Martini & Rossi", 2021, "Asti, Italy", "moscato bianco", "white", "sparkling", "IT-SPAR-001", "16.00", "9.00", 0), 9},
	{wine("Fonseca Bin 27", "Fonseca", 2019, "Douro, Portugal", "touriga nacional", "red", "fortified", "PT-PORT-001", "25.00", "14.00", 0), 0},
	{wine("Mateus Rosé", "Sogrape Vinhos", 2022, "Douro, Portugal", "other", "rosé", "still", "PT-ROSE-001", "10.00", "5.50", 0), 0},
	{wine("Château d'Esclans Whispering Angel", "Château d'Esclans", 2021, "Provence, France", "grenache", "rosé", "still", "FR-ROSE-002", "27.00", "15.00", 0), 11},
	{wine("Txakoli Ameztoi Rubentis", "Ameztoi", 2022, "Getariako Txakolina, Spain", "hondarrabi zuri", "rosé", "sparkling", "ES-OTH-001", "22.00", "13.00", 0), 1},
	{wine("Niepoort Ruby Port", "Niepoort", 2020, "Douro, Portugal", "tinta roriz", "red", "fortified", "PT-PORT-002", "30.00", "18.00", 0), 0},
	{wine("Marques de Riscal Reserva", "Marques de Riscal", 2018, "Rioja, Spain", "other", "red", "still", "ES-RED-002", "32.00", "18.00", 0), 10},
	{wine("Penfolds Bin 389", "Penfolds", 2019, "South Australia, Australia", "cabernet sauvignon", "red", "still", "AU-RED-001", "55.00", "28.00", 2), 5},
	{wine("Cloudy Bay Sauvignon Blanc", "Cloudy Bay", 2022, "Marlborough, New Zealand", "other", "white", "still", "NZ-WHITE-001", "35.00", "20.00", 3), 8},
	{wine("Santa Rita 120 Cabernet Sauvignon", "Santa Rita", 2021, "Central Valley, Chile", "cabernet sauvignon", "red", "still", "CL-RED-002", "13.00", "7.00", 6), 12},
	{wine("Trapiche Oak Cask Malbec", "Trapiche", 2020, "Mendoza, Argentina", "malbec", "red", "still", "AR-MALB-003", "18.00", "9.00", 5), 20},
	{wine("Alamos Chardonnay", "Alamos", 2021, "Mendoza, Argentina", "other", "white", "still", "AR-WHITE-001", "15.00", "8.50", 10), 30},
	{wine("Tio Pepe Fino Sherry", "Gonzalez Byass", 2019, "Jerez, Spain", "other", "white", "fortified", "ES-FORT-001", "20.00", "11.00", 22), 22},
	{wine("Beringer Founders Estate Zinfandel", "Beringer", 2020, "California, United States", "other", "red", "still", "US-RED-002", "18.00", "10.00", 80), 60},
}

var sampleMovements = []sampleMovement{
	{"AR-MALB-001", "purchase", 5, "20.50"},
	{"AR-MALB-001", "sale", 2, "65.23"},
	{"AR-MALB-001", "sale", 2, "65.23"},
	{"AR-MALB-001", "sale", 3, "65.23"},

	{"AR-MALB-003", "purchase", 14, "9.00"},
	{"AR-MALB-003", "sale", 10, "18.00"},
	{"AR-MALB-003", "sale", 16, "18.00"},

	{"AR-TORR-001", "purchase", 10, "9.50"},
	{"AR-TORR-001", "purchase", 11, "9.50"},
	{"AR-TORR-001", "sale", 9, "17.00"},
	{"AR-TORR-001", "sale", 11, "17.00"},

	{"AU-RED-001", "purchase", 19, "28.00"},
	{"AU-RED-001", "sale", 7, "55.00"},
	{"AU-RED-001", "sale", 8, "55.00"},

	{"CL-CABS-001", "purchase", 6, "30.00"},
	{"CL-CABS-001", "sale", 2, "55.00"},
	{"CL-CABS-001", "sale", 2, "55.00"},
	{"CL-CABS-001", "sale", 2, "55.00"},

	{"CL-RED-002", "purchase", 5, "7.00"},
	{"CL-RED-002", "sale", 7, "13.00"},
	{"CL-RED-002", "sale", 7, "13.00"},

	{"ES-FORT-001", "purchase", 14, "11.00"},
	{"ES-FORT-001", "sale", 13, "20.00"},
	{"ES-FORT-001", "sale", 13, "20.00"},

	{"ES-RED-002", "purchase", 11, "18.00"},
	{"ES-RED-002", "sale", 5, "32.00"},
	{"ES-RED-002", "sale", 7, "32.00"},

	{"FR-ROSE-002", "purchase", 17, "15.00"},
	{"FR-ROSE-002", "sale", 7, "27.00"},
	{"FR-ROSE-002", "sale", 9, "27.00"},

	{"IT-SPAR-001", "purchase", 8, "9.00"},
	{"IT-SPAR-001", "sale", 8, "16.00"},
	{"IT-SPAR-001", "sale", 9, "16.00"},

	{"PT-PORT-001", "purchase", 9, "14.00"},
	{"PT-PORT-001", "sale", 4, "25.00"},
	{"PT-PORT-001", "sale", 5, "25.00"},

	{"US-RED-002", "sale", 8, "18.00"},
	{"US-RED-002", "sale", 9, "18.00"},
	{"US-RED-002", "sale", 9, "18.00"},
}

func wine(name, winery string, vintage int, region, varietal, colour, style, code, unitPrice, purchasePrice string, threshold int) validation.WineInput {
	return validation.WineInput{
		Name:              name,
		Winery:            winery,
		Vintage:           vintage,
		Region:            region,
		Varietal:          varietal,
		Colour:            colour,
		Style:             style,
		Code:              code,
		UnitPrice:         unitPrice,
		PurchasePrice:     purchasePrice,
		MinStockThreshold: threshold,
	}
}
