package facilities

var montesClaros = []Facility{
	{
		ID:          "hu-clemente-de-faria",
		Name:        "Hospital Universitário Clemente de Faria",
		Type:        TypeHospital,
		Address:     "Av. Cula Mangabeira, 562 - Santo Expedito",
		Phone:       "(38) 3224-8373",
		Hours:       "24 horas",
		Specialties: []string{"Emergência", "Clínica Médica", "Cirurgia Geral", "Pediatria", "Trauma", "Cardiologia", "Neurologia"},
		Public:      true,
		DistanceKM:  2.5,
		Location:    Coordinates{Lat: -16.7298, Lng: -43.8780},
	},
	{
		ID:          "santa-casa",
		Name:        "Santa Casa de Montes Claros",
		Type:        TypeHospital,
		Address:     "Praça Honorato Alves, 22 - Centro",
		Phone:       "(38) 3229-2500",
		Hours:       "24 horas",
		Specialties: []string{"Emergência", "Cardiologia", "Oncologia", "Ortopedia", "Pediatria"},
		Public:      false,
		DistanceKM:  1.8,
		Location:    Coordinates{Lat: -16.7205, Lng: -43.8678},
	},
	{
		ID:          "upa-norte",
		Name:        "UPA Norte",
		Type:        TypeUPA,
		Address:     "Av. Donato Quintino, 90 - Planalto",
		Phone:       "(38) 3690-2200",
		Hours:       "24 horas",
		Specialties: []string{"Pronto Atendimento", "Urgência"},
		Public:      true,
		DistanceKM:  0.8,
		Location:    Coordinates{Lat: -16.7123, Lng: -43.8567},
	},
	{
		ID:          "ubs-delfino-magalhaes",
		Name:        "UBS Delfino Magalhães",
		Type:        TypeUBS,
		Address:     "R. Mangabeiras, 683 - Delfino Magalhães",
		Phone:       "(38) 3229-3350",
		Hours:       "07:00 às 17:00",
		Specialties: []string{"Clínica Geral", "Pediatria", "Ginecologia", "Enfermagem"},
		Public:      true,
		DistanceKM:  3.2,
		Location:    Coordinates{Lat: -16.7154, Lng: -43.8589},
	},
	{
		ID:          "centro-especialidades",
		Name:        "Centro de Especialidades Médicas",
		Type:        TypeClinic,
		Address:     "Av. José Corrêa Machado, 1000 - Ibituruna",
		Phone:       "(38) 3690-1234",
		Hours:       "08:00 às 18:00",
		Specialties: []string{"Cardiologia", "Neurologia", "Endocrinologia", "Dermatologia"},
		Public:      false,
		DistanceKM:  1.5,
		Location:    Coordinates{Lat: -16.7245, Lng: -43.8701},
	},
	{
		ID:          "laboratorio-sao-lucas",
		Name:        "Laboratório São Lucas",
		Type:        TypeLaboratory,
		Address:     "R. Tupinambás, 13 - Melo",
		Phone:       "(38) 3212-2434",
		Hours:       "06:00 às 18:00",
		Specialties: []string{"Análises Clínicas", "Radiologia", "Ultrassonografia"},
		Public:      false,
		DistanceKM:  0.9,
		Location:    Coordinates{Lat: -16.7198, Lng: -43.8645},
	},
}

var emergencyServices = []Service{
	{
		Name:        "SAMU - Serviço de Atendimento Móvel de Urgência",
		Number:      "192",
		Description: "Atendimento médico de urgência e emergência",
		Kind:        "medical",
		Hours:       "24 horas",
	},
	{
		Name:        "Bombeiros",
		Number:      "193",
		Description: "Combate a incêndios, resgates e emergências",
		Kind:        "fire",
		Hours:       "24 horas",
	},
	{
		Name:        "Polícia Militar",
		Number:      "190",
		Description: "Segurança pública e emergências policiais",
		Kind:        "police",
		Hours:       "24 horas",
	},
	{
		Name:        "Defesa Civil",
		Number:      "199",
		Description: "Emergências ambientais e desastres naturais",
		Kind:        "civil",
		Hours:       "24 horas",
	},
}
