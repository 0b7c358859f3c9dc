package palette

// Reference palettes decoded with FromHex. Each entry is six hex digits (RRGGBB).
const (
	// ReferenceHex is the 256-entry palette of the illustrated reference flame.
	ReferenceHex = "" +
		"3130323635383B3A3D403F424644484B494D504E52565358" +
		"5B585D605D626562686B676D706C737571787B767D807B83" +
		"8580888A858D908A93958F989A949DA099A3A59EA8AAA3AD" +
		"AFA8B3B5ADB8BAB2BEBFB7C3C5BCC8CAC1CECFC6D3D4CBD8" +
		"DAD0DEDFD5E3DFD2E0DFCEDDE0CBDAE0C8D7E0C4D3E0C1D0" +
		"E1BECDE1BBCAE1B7C7E1B4C4E1B1C1E2ADBEE2AABAE2A7B7" +
		"E2A3B4E2A0B1E39DAEE399ABE396A8E393A5E490A1E48C9E" +
		"E4899BE48698E48295E57F92E57C8FE5788CE57589E57285" +
		"E66E82E66B7FE6687CE66479E76176E75E73E75B70E7576C" +
		"E75469E85166E84D63E84A60E4495EE0485CDC475BD84659" +
		"D44557D04455CB4353C74252C34150BF404EBB3F4CB73E4B" +
		"B33D49AF3C47AB3B45A73A43A339429F38409B373E97363C" +
		"92353A8E34398A33378632358231337E30327A2F30762E2E" +
		"722D2C6E2C2A6A2B29662A276229255E2823592721552620" +
		"51251E4D241C49231A4522194121173D20153C1F153A1F14" +
		"391E14381E14361D14351C13341C13321B13311B132F1A12" +
		"2E19122D19122B18122A1811291711271611261611251510" +
		"23151022141021140F1F130F1E120F1C120F1B110E1A110E" +
		"18100E170F0E160F0D140E0D130E0D120D0D100C0C0F0C0C" +
		"0E0B0C0C0B0C0B0A0B09090B08090B07080B05080A04070A" +
		"0606090804090A03088C46728A457087446D85436B824369" +
		"8042667D41647B4061793F5F763E5D743D5A713D586F3C56" +
		"6C3B536A3A5168394F65384C63374A6037485E36455B3543" +
		"59344057333E54323C5231394F31374D30354A2F32482E30" +
		"462D2E432C2B412B293E2B273C2A2439292237281F35271D" +
		"32261B3025182D25162B241428231126220F25210F24210E" +
		"23200E221F0E221E0D211E0D201D0D1F1C0D1E1B0C1D1B0C" +
		"1C1A0C1B190B1B180B1A180B19170A18160A17150A161509" +
		"1514091413091413081312081211081110081010070F0F07" +
		"0E0E070D0D060C0D060C0C060B0B050A0A05090A05080904" +
		"070804060704050704050603040503030403020402010302" +
		"0608070C0D0D1112121617171B1C1D2121222626272B2B2D"

	// ClassicHex is the 256-entry palette of the earlier reference parameter set.
	ClassicHex = "" +
		"7E3037762C45722B496E2A4E6A2950672853652754632656" +
		"5C265C5724595322574D2155482153462050451F4E441E4D" +
		"431E4C3F1E473F1E453F1E433F1E3F3F1E3B3E1E393E1E37" +
		"421D36431C38451C3A471B3B491B3C4A1A3C4B1A3D4D1A3E" +
		"4F19405318435517445817465A16475D15495E154960154A" +
		"65134E6812506B12526E1153711055720F55740F55770E57" +
		"7A0E59810C58840B58880A588B09588F0858910756930755" +
		"9A05539D0451A1034FA5024BA90147AA0046AC0045B00242" +
		"B4043DBB0634BE082EC20A29C30B27C50C26C90F1DCC1116" +
		"D32110D6280EDA300CDC380ADF4109E04508E24A08E45106" +
		"E75704EA6402EC6B01EE7300EE7600EF7A00F07E00F18300" +
		"F29000F29300F39600F39900F39C00F3A000F3A100F3A201" +
		"F2A502F1A805F0A906EFAA08EEA909EEA80AEDA60CEBA50F" +
		"E5A313E1A113DD9F13DB9E13D99D14D49C15D09815CC9518" +
		"C79318BE8B1ABB891BB9871DB4811FB07D1FAB7621A67123" +
		"9C6227975C289256299053298E502A89482C853F2D803A2E" +
		"7E3037762C45742B47722B496E2A4E6A2951672853632656" +
		"5C265C5724595322575022564E2255482153452050451F4E" +
		"431E4C3F1E473E1D463D1D453F1E43411E413F1E3B3E1E37" +
		"421D36421D38431D3B451C3A471B3A491B3C4B1A3D4D1A3E" +
		"4F19405318435418445518455817465A16475D154960154A" +
		"65134E66124F6812506B12526E1153711055740F55770E57" +
		"7A0E597E0D57810C58840B58880A588B09588F0858930755" +
		"9A05539C04529E0452A1034FA5024BA90147AC0045B00242" +
		"B4043DB7053ABB0634BE0831C20A29C50C26C90F1DCC1116" +
		"D01711D32110D72A0EDA300CDD390ADF4109E24A08E45106" +
		"E75704E95F03EA6402EC6C01EE7300EF7A00F07E00F18300" +
		"F28900F29000F39300F39600F39C00F3A000F3A100F3A201" +
		"F2A502F2A503F1A805F0A807EFAA08EEA80AEDA60CEBA50F" +
		"E9A411E5A313E1A113DD9F13D99D14D49C15D09815CC9518" +
		"C79318C38F1ABE8B1AB9871DB4811FB07D1FAB7621A67123" +
		"A16A249C6227975E289256298E502A89482C853F2D803A2E"
)
