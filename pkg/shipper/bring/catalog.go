package bring

import "strings"

// Product is a Bring product id as accepted by the Shipping Guide.
type Product struct {
	Code string
	Name string
}

// Known products. Servicepakke is used when a method does not name one.
var (
	Servicepakke            = Product{Code: "SERVICEPAKKE", Name: "Klimanøytral Servicepakke"}
	PaDoren                 = Product{Code: "PA_DOREN", Name: "På Døren"}
	BedriftspakkeDorDor     = Product{Code: "BPAKKE_DOR-DOR", Name: "Bedriftspakke"}
	Ekspress09              = Product{Code: "EKSPRESS09", Name: "Bedriftspakke Ekspress-Over natten 09"}
	Minipakke               = Product{Code: "MINIPAKKE", Name: "Minipakke"}
	APost                   = Product{Code: "A-POST", Name: "A-Prioritert"}
	BPost                   = Product{Code: "B-POST", Name: "B-Økonomi"}
	SmaapakkerAPost         = Product{Code: "SMAAPAKKER_A-POST", Name: "Småpakker A-Post"}
	SmaapakkerBPost         = Product{Code: "SMAAPAKKER_B-POST", Name: "Småpakker B-Post"}
	QuickPackSameDay        = Product{Code: "QUICKPACK_SAMEDAY", Name: "QuickPack SameDay"}
	QuickPackOverNight0900  = Product{Code: "QUICKPACK_OVER_NIGHT_0900", Name: "QuickPack Over Night 0900"}
	QuickPackOverNight1200  = Product{Code: "QUICKPACK_OVER_NIGHT_1200", Name: "QuickPack Over Night 1200"}
	QuickPackDayCertain     = Product{Code: "QUICKPACK_DAY_CERTAIN", Name: "QuickPack Day Certain"}
	QuickPackExpressEconomy = Product{Code: "QUICKPACK_EXPRESS_ECONOMY", Name: "QuickPack Express Economy"}
	CargoGroupage           = Product{Code: "CARGO_GROUPAGE", Name: "Cargo"}
	CarryOnBusiness         = Product{Code: "CARRYON_BUSINESS", Name: "CarryOn Business"}
	CarryOnHomeShopping     = Product{Code: "CARRYON_HOMESHOPPING", Name: "CarryOn HomeShopping"}
	HomeDeliveryCurbside    = Product{Code: "HOMEDELIVERY_CURBSIDE_DAG", Name: "Hjemlevering kantstein"}
	CourierVIP              = Product{Code: "COURIER_VIP", Name: "Bud VIP"}
	Courier1H               = Product{Code: "COURIER_1H", Name: "Bud 1 time"}
	Courier2H               = Product{Code: "COURIER_2H", Name: "Bud 2 timer"}
	Courier4H               = Product{Code: "COURIER_4H", Name: "Bud 4 timer"}
	Courier6H               = Product{Code: "COURIER_6H", Name: "Bud 6 timer"}
)

// Products lists every known product.
var Products = []Product{
	Servicepakke, PaDoren, BedriftspakkeDorDor, Ekspress09, Minipakke,
	APost, BPost, SmaapakkerAPost, SmaapakkerBPost,
	QuickPackSameDay, QuickPackOverNight0900, QuickPackOverNight1200,
	QuickPackDayCertain, QuickPackExpressEconomy,
	CargoGroupage, CarryOnBusiness, CarryOnHomeShopping, HomeDeliveryCurbside,
	CourierVIP, Courier1H, Courier2H, Courier4H, Courier6H,
}

// ProductByCode looks a product up by its code, ignoring case.
func ProductByCode(code string) (Product, bool) {
	code = strings.TrimSpace(code)
	for _, p := range Products {
		if strings.EqualFold(p.Code, code) {
			return p, true
		}
	}
	return Product{}, false
}

// AdditionalService is an optional add-on to a product.
type AdditionalService struct {
	Code string
	Name string
}

var (
	EVarsling           = AdditionalService{Code: "EVARSLING", Name: "Recipient notification over SMS or e-mail"}
	PostOppkrav         = AdditionalService{Code: "POSTOPPKRAV", Name: "Cash on delivery"}
	LordagsUtkjoring    = AdditionalService{Code: "LORDAGSUTKJORING", Name: "Delivery on Saturdays"}
	EnvelopeSize        = AdditionalService{Code: "ENVELOPE", Name: "Express envelope"}
	Advisering          = AdditionalService{Code: "ADVISERING", Name: "Bring contacts recipient"}
	PersonligUtlevering = AdditionalService{Code: "PERSONLIG_UTLEVERING", Name: "Personal delivery"}
	Fraktforsikring     = AdditionalService{Code: "FRAKTFORSIKRING", Name: "Freight insurance"}
)

// AdditionalServices lists every known additional service.
var AdditionalServices = []AdditionalService{
	EVarsling, PostOppkrav, LordagsUtkjoring, EnvelopeSize,
	Advisering, PersonligUtlevering, Fraktforsikring,
}

// AdditionalServiceByCode looks a service up by its exact code.
func AdditionalServiceByCode(code string) (AdditionalService, bool) {
	for _, s := range AdditionalServices {
		if s.Code == code {
			return s, true
		}
	}
	return AdditionalService{}, false
}

// ParseAdditionalServices turns a comma-separated list of codes into known
// services. Unknown codes and duplicates are skipped.
func ParseAdditionalServices(list string) []AdditionalService {
	var services []AdditionalService
	seen := make(map[string]bool)
	for _, code := range strings.Split(list, ",") {
		code = strings.TrimSpace(code)
		s, ok := AdditionalServiceByCode(code)
		if !ok || seen[code] {
			continue
		}
		seen[code] = true
		services = append(services, s)
	}
	return services
}
