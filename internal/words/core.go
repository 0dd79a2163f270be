package words

var coreWords = []string{
	// vie quotidienne
	"maison", "appartement", "porte", "fenetre", "cle", "chaise", "table", "lit", "cuisine", "salon", "jardin",
	"ecole", "bureau", "travail", "magasin", "marche", "banque", "hopital", "police", "juge", "avocat",
	"famille", "ami", "enfant", "mere", "pere", "frere", "soeur", "voisin",
	// objets
	"voiture", "moteur", "roue", "velo", "train", "avion", "bateau", "ordinateur", "telephone", "internet",
	"photo", "musique", "film", "jeu", "radio", "television", "lampe", "papier", "stylo", "livre", "cahier",
	// aliments
	"pain", "fromage", "beurre", "lait", "sucre", "sel", "poivre", "eau", "cafe", "the", "chocolat", "gateau",
	"pomme", "poire", "banane", "orange", "citron", "tomate", "carotte", "oignon", "poisson", "poulet", "viande", "riz", "pates",
	// nature
	"soleil", "lune", "etoile", "ciel", "nuage", "pluie", "neige", "vent", "orage", "mer", "plage", "montagne", "foret", "arbre", "fleur", "terre", "feu", "air",
	// lieux
	"rue", "route", "pont", "parc", "place", "eglise", "gare", "hotel", "restaurant", "bibliotheque",
	// temps
	"matin", "midi", "soir", "nuit", "jour", "semaine", "mois", "annee", "heure", "minute",
	// infinitifs courants
	"manger", "boire", "aller", "venir", "faire", "dire", "voir", "prendre", "mettre", "donner", "parler", "ecouter", "lire", "ecrire", "jouer", "marcher", "courir", "ouvrir", "fermer",
	"acheter", "vendre", "payer", "aider", "chercher", "trouver", "regarder", "voyager", "dormir", "rire", "sourire", "apprendre", "comprendre",
	// notions
	"argent", "prix", "cadeau", "fete", "idee", "projet", "groupe", "equipe", "histoire", "image", "couleur",
	"electricite", "energie", "batterie", "lumiere",
}
