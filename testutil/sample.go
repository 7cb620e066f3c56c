package testutil

import "github.com/broady/clientgen/codedom"

// Sample is a small API surface that exercises every emission rule:
// polymorphic models, enums, collections, an error model, a query
// parameters mapper and a client constructor.
type Sample struct {
	Tree *codedom.Tree

	Models     codedom.ID // /api/models
	ModelsFile codedom.ID // /api/models/index
	Users      codedom.ID // /api/users
	UsersFile  codedom.ID // /api/users/index
	ClientFile codedom.ID // /api/apiClient

	Animal, Dog, Cat, Widget codedom.ID
	MainError, ODataError    codedom.ID
	ErrorClass               codedom.ID

	Color, ColorObject             codedom.ID
	Permissions, PermissionsObject codedom.ID
	Mood, MoodObject               codedom.ID // zero options

	Fns map[codedom.ID]ModelFunctions

	QueryParameters codedom.ID
	QueryMapper     codedom.ID

	Client            codedom.ID // ApiClient request builder
	ClientUriTemplate codedom.ID
	ClientNavigation  codedom.ID
	ClientConstructor codedom.ID
}

// NewSample builds and indexes the sample tree.
func NewSample() *Sample {
	b := NewBuilder("api")
	s := &Sample{Tree: b.Tree, Fns: make(map[codedom.ID]ModelFunctions)}

	s.Models = b.Namespace(b.Root(), "models")
	s.ModelsFile = b.File(s.Models, "index")
	f := s.ModelsFile

	s.Color = b.Enum(f, "Color", false, "Red", "Green", "DarkBlue=dark-blue")
	s.ColorObject = b.EnumObject(f, s.Color)
	s.Permissions = b.Enum(f, "Permissions", true, "Read", "Write")
	s.PermissionsObject = b.EnumObject(f, s.Permissions)
	s.Mood = b.Enum(f, "Mood", false)
	s.MoodObject = b.EnumObject(f, s.Mood)

	s.Widget = b.Interface(f, "Widget")
	b.Property(s.Widget, "id", codedom.Primitive("Guid"), Wire("id"))
	b.Property(s.Widget, "label", codedom.Primitive("string"), Wire("label"))

	s.Animal = b.Interface(f, "Animal")
	animal, _ := codedom.Get[*codedom.Interface](b.Tree, s.Animal)
	b.Property(s.Animal, "additionalData", codedom.Primitive("Record<string, unknown>"), OfKind(codedom.PropertyAdditionalData))
	b.Property(s.Animal, "backingStoreEnabled", codedom.Primitive("boolean"), OfKind(codedom.PropertyBackingStore))
	b.Property(s.Animal, "species", codedom.Primitive("string"), Wire("species"))
	b.Property(s.Animal, "name", codedom.Primitive("string"), Wire("name"))
	b.Property(s.Animal, "birthday", codedom.Primitive("DateOnly"), Wire("birthday"))
	b.Property(s.Animal, "createdAt", codedom.Primitive("DateTimeOffset"), Wire("createdAt"), ReadOnly())
	b.Property(s.Animal, "color", b.Tree.Ref(s.Color), Wire("color"))
	b.Property(s.Animal, "permissions", b.Tree.Ref(s.Permissions), Wire("permissions"))
	b.Property(s.Animal, "moods", b.Tree.Ref(s.Mood).Array(), Wire("moods"))
	b.Property(s.Animal, "tags", codedom.Primitive("string").Array(), Wire("tags"))
	b.Property(s.Animal, "photo", codedom.Primitive("binary"), Wire("photo"))
	b.Property(s.Animal, "favoriteToy", b.Tree.Ref(s.Widget), Wire("favoriteToy"))
	b.Property(s.Animal, "toys", b.Tree.Ref(s.Widget).Array(), Wire("toys"))

	s.Dog = b.Interface(f, "Dog", s.Animal)
	b.Property(s.Dog, "species", codedom.Primitive("string"), Wire("species"), InBase())
	b.Property(s.Dog, "goodBoy", codedom.Primitive("boolean"), Wire("good_boy"))
	b.Property(s.Dog, "palette", b.Tree.Ref(s.Color).Array(), Wire("palette"))

	s.Cat = b.Interface(f, "Cat", s.Animal)
	b.Property(s.Cat, "lives", codedom.Primitive("integer"), Wire("lives"))
	b.Property(s.Cat, "napTime", codedom.Primitive("TimeSpan"), Wire("napTime"))

	animal.Discriminator = codedom.DiscriminatorInformation{
		PropertyName: "species",
		Mappings: []codedom.DiscriminatorMapping{
			{Value: "dog", Type: b.Tree.Ref(s.Dog)},
			{Value: "cat", Type: b.Tree.Ref(s.Cat)},
		},
	}

	s.MainError = b.Interface(f, "MainError")
	b.Property(s.MainError, "code", codedom.Primitive("string"), Wire("code"))
	b.Property(s.MainError, "message", codedom.Primitive("string"), Wire("message"), PrimaryMessage())
	s.ODataError = b.Interface(f, "ODataError")
	b.Property(s.ODataError, "error", b.Tree.Ref(s.MainError), Wire("error"))
	s.ErrorClass = b.Add(s.Models, "ODataErrorClass", &codedom.Class{
		IsErrorDefinition:   true,
		AssociatedInterface: s.ODataError,
	})

	for _, model := range []codedom.ID{s.Widget, s.Animal, s.Dog, s.Cat, s.MainError, s.ODataError} {
		s.Fns[model] = b.Functions(f, model)
	}
	errFn, _ := codedom.Get[*codedom.Function](b.Tree, s.Fns[s.ODataError].Deserializer)
	errFn.OriginalParent = s.ErrorClass

	s.Users = b.Namespace(b.Root(), "users")
	s.UsersFile = b.File(s.Users, "index")
	s.QueryParameters = b.Add(s.UsersFile, "UsersRequestBuilderGetQueryParameters", &codedom.Interface{Kind: codedom.InterfaceQueryParameters})
	b.Property(s.QueryParameters, "select", codedom.Primitive("string").Array(), Wire("$select"), OfKind(codedom.PropertyQueryParameter))
	b.Property(s.QueryParameters, "filter", codedom.Primitive("string"), Wire("$filter"), OfKind(codedom.PropertyQueryParameter))
	b.Property(s.QueryParameters, "search", codedom.Primitive("string"), OfKind(codedom.PropertyQueryParameter))
	s.QueryMapper = b.Add(s.UsersFile, "UsersRequestBuilderGetQueryParametersMapper", &codedom.Constant{
		Kind:   codedom.ConstantQueryParametersMapper,
		Origin: s.QueryParameters,
	})

	s.ClientFile = b.File(b.Root(), "apiClient")
	s.Client = b.Add(s.ClientFile, "ApiClient", &codedom.Interface{Kind: codedom.InterfaceRequestBuilder})
	s.ClientUriTemplate = b.Add(s.ClientFile, "ApiClientUriTemplate", &codedom.Constant{
		Kind:   codedom.ConstantURITemplate,
		Origin: s.Client,
		Value:  "{+baseurl}",
	})
	s.ClientNavigation = b.Add(s.ClientFile, "ApiClientNavigationMetadata", &codedom.Constant{
		Kind:   codedom.ConstantNavigationMetadata,
		Origin: s.Client,
	})
	s.ClientConstructor = b.Add(s.ClientFile, "createApiClient", &codedom.Function{
		Body: &codedom.ClientConstructorBody{
			SerializerModules:   []string{"JsonSerializationWriterFactory", "TextSerializationWriterFactory"},
			DeserializerModules: []string{"JsonParseNodeFactory"},
			BaseURL:             "https://api.example.com/v1",
		},
		ReturnType: b.Tree.Ref(s.Client),
	})
	b.Parameter(s.ClientConstructor, "requestAdapter", codedom.ParameterRequestAdapter, codedom.Primitive("RequestAdapter"), false)
	b.Parameter(s.ClientConstructor, "backingStore", codedom.ParameterBackingStore, codedom.Primitive("BackingStoreFactory"), true)

	b.Index()
	return s
}
